package store

import (
	"reflect"
	"testing"
)

func TestMap_SetGetChanged(t *testing.T) {
	m := NewMap(31, 0, -33, 4)
	if m.Get(40, 10, -20) != 0 {
		t.Fatalf("unset cell should read 0")
	}
	if m.Set(40, 10, -20, 0) {
		t.Fatalf("setting an unset cell to 0 must not report a change")
	}
	if !m.Set(40, 10, -20, 5) {
		t.Fatalf("first set should report a change")
	}
	if m.Set(40, 10, -20, 5) {
		t.Fatalf("same value should not report a change")
	}
	if got := m.Get(40, 10, -20); got != 5 {
		t.Fatalf("get: %d", got)
	}
	if !m.Set(40, 10, -20, -5) || m.Get(40, 10, -20) != -5 {
		t.Fatalf("negative shadow values must round-trip")
	}
	if m.Len() != 1 {
		t.Fatalf("len: %d", m.Len())
	}
	if !m.Set(40, 10, -20, 0) || m.Len() != 0 {
		t.Fatalf("clearing should report a change and drop the live count, len=%d", m.Len())
	}
	if m.Set(30, 0, 0, 1) {
		t.Fatalf("cells below the origin are out of range")
	}
}

func TestMap_GrowKeepsValues(t *testing.T) {
	m := NewMap(0, 0, 0, 1)
	n := 0
	for x := 0; x < 34; x++ {
		for z := 0; z < 34; z++ {
			for y := 0; y < 5; y++ {
				m.Set(x, y, z, x+y+z+1)
				n++
			}
		}
	}
	if m.Len() != n {
		t.Fatalf("len %d want %d", m.Len(), n)
	}
	for x := 0; x < 34; x++ {
		for z := 0; z < 34; z++ {
			for y := 0; y < 5; y++ {
				if got := m.Get(x, y, z); got != x+y+z+1 {
					t.Fatalf("(%d,%d,%d)=%d", x, y, z, got)
				}
			}
		}
	}
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := NewMap(0, 0, 0, 8)
	m.Set(1, 2, 3, 7)
	c := m.Clone()
	c.Set(1, 2, 3, 9)
	c.Set(4, 4, 4, 1)
	if m.Get(1, 2, 3) != 7 || m.Get(4, 4, 4) != 0 {
		t.Fatalf("clone aliases the original")
	}
	if !reflect.DeepEqual(m.Clone().Entries(), m.Entries()) {
		t.Fatalf("clone iteration order differs")
	}
	var nilMap *Map
	if nilMap.Clone() != nil || nilMap.Get(0, 0, 0) != 0 || nilMap.Len() != 0 {
		t.Fatalf("nil map helpers")
	}
}

func TestMap_EachSkipsZero(t *testing.T) {
	m := NewMap(0, 0, 0, 8)
	m.Set(1, 1, 1, 3)
	m.Set(2, 2, 2, 4)
	m.Set(2, 2, 2, 0)
	var seen []Entry
	m.Each(func(x, y, z, w int) { seen = append(seen, Entry{X: x, Y: y, Z: z, W: w}) })
	if len(seen) != 1 || seen[0] != (Entry{X: 1, Y: 1, Z: 1, W: 3}) {
		t.Fatalf("each: %+v", seen)
	}
	r := MapFromEntries(0, 0, 0, m.Entries())
	if r.Get(1, 1, 1) != 3 || r.Len() != 1 {
		t.Fatalf("rebuild from entries")
	}
}

func TestSignList(t *testing.T) {
	var l SignList
	l.Add(Sign{X: 1, Y: 2, Z: 3, Face: 0, Text: "hello"})
	l.Add(Sign{X: 1, Y: 2, Z: 3, Face: 1, Text: "world"})
	l.Add(Sign{X: 1, Y: 2, Z: 3, Face: 0, Text: "again"})
	if l.Len() != 2 {
		t.Fatalf("same face should be replaced, len=%d", l.Len())
	}
	if s, ok := l.Get(1, 2, 3, 0); !ok || s.Text != "again" {
		t.Fatalf("get: %+v %v", s, ok)
	}
	if l.Remove(1, 2, 3, 5) != 0 {
		t.Fatalf("removed a missing face")
	}
	if l.RemoveAll(1, 2, 3) != 2 || l.Len() != 0 {
		t.Fatalf("remove all")
	}
}
