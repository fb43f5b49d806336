package world

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSetBlock_ClearResetsDamageSignsAndLight(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	stone := blockID(t, "STONE")

	w.SetBlock(5, 10, 5, stone)
	if !w.SetBlockDamage(5, 10, 5, 40) {
		t.Fatalf("set damage refused")
	}
	w.SetSign(5, 10, 5, 2, "hello")
	w.SetSign(5, 10, 5, 4, "top")
	w.ToggleLight(5, 10, 5)
	if w.GetLight(5, 10, 5) != 15 || w.GetBlockDamage(5, 10, 5) != 40 {
		t.Fatalf("setup failed: light=%d damage=%d", w.GetLight(5, 10, 5), w.GetBlockDamage(5, 10, 5))
	}
	if n := w.FindChunk(0, 0).Signs.Len(); n != 2 {
		t.Fatalf("signs: got %d want 2", n)
	}

	w.SetBlock(5, 10, 5, 0)
	if w.GetBlock(5, 10, 5) != 0 {
		t.Fatalf("block not cleared")
	}
	if d := w.GetBlockDamage(5, 10, 5); d != 0 {
		t.Fatalf("damage: got %d want 0", d)
	}
	if n := w.FindChunk(0, 0).Signs.Len(); n != 0 {
		t.Fatalf("signs: got %d want 0", n)
	}
	if l := w.GetLight(5, 10, 5); l != 0 {
		t.Fatalf("light: got %d want 0", l)
	}
}

func TestSetBlock_WritesBorderShadows(t *testing.T) {
	st := newMemStore()
	net := &recordingNetwork{}
	w := newTestWorld(t, testTuning(), st, net)
	for _, k := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {-1, 0}} {
		mustChunk(t, w, k[0], k[1])
	}
	grass := blockID(t, "GRASS")
	st.reset()

	w.SetBlock(31, 10, 31, grass)
	for _, k := range [][2]int{{1, 0}, {0, 1}, {1, 1}} {
		if got := w.FindChunk(k[0], k[1]).Blocks.Get(31, 10, 31); got != -grass {
			t.Fatalf("chunk %v shadow: got %d want %d", k, got, -grass)
		}
	}
	if got := w.FindChunk(-1, 0).Blocks.Get(31, 10, 31); got != 0 {
		t.Fatalf("far chunk touched: %d", got)
	}
	if got := w.GetBlock(31, 10, 31); got != grass {
		t.Fatalf("owner: got %d want %d", got, grass)
	}
	if n := len(st.insertLog()); n != 4 {
		t.Fatalf("inserts: got %d want 4: %v", n, st.insertLog())
	}
	if len(net.sent) != 1 || net.sent[0] != "B 31,10,31=1" {
		t.Fatalf("network: %v", net.sent)
	}

	// An interior edit touches only its own chunk.
	st.reset()
	w.SetBlock(5, 10, 5, grass)
	if n := len(st.insertLog()); n != 1 {
		t.Fatalf("interior inserts: got %d want 1", n)
	}

	// Rewriting the same value persists nothing.
	st.reset()
	w.SetBlock(5, 10, 5, grass)
	if n := len(st.insertLog()); n != 0 {
		t.Fatalf("unchanged edit persisted: %v", st.insertLog())
	}
}

func TestSetBlock_UnloadedChunkStillPersists(t *testing.T) {
	st := newMemStore()
	w := newTestWorld(t, testTuning(), st, nil)
	w.SetBlock(100, 10, 100, blockID(t, "SAND"))
	log := st.insertLog()
	if len(log) == 0 || !strings.HasPrefix(log[0], "block 3,3 100,10,100=") {
		t.Fatalf("store: %v", log)
	}

	// The stored edit is replayed when the chunk loads.
	c := mustChunk(t, w, 3, 3)
	if got := c.Blocks.Get(100, 10, 100); got != blockID(t, "SAND") {
		t.Fatalf("replayed block: got %d", got)
	}
}

func TestMarkDirty_LightsSpreadToNeighbors(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	for p := -1; p <= 1; p++ {
		for q := -1; q <= 1; q++ {
			mustChunk(t, w, p, q)
		}
	}
	clean := func() {
		for _, c := range w.Chunks() {
			c.Dirty = false
		}
	}
	dirty := func() int {
		n := 0
		for _, c := range w.Chunks() {
			if c.Dirty {
				n++
			}
		}
		return n
	}

	clean()
	w.MarkDirty(w.FindChunk(0, 0))
	if n := dirty(); n != 1 {
		t.Fatalf("without lights: got %d dirty want 1", n)
	}

	clean()
	w.SetLight(0, 0, 5, 10, 5, 15)
	if n := dirty(); n != 9 {
		t.Fatalf("with lights: got %d dirty want 9", n)
	}

	// A neighbor's light also spreads.
	clean()
	w.MarkDirty(w.FindChunk(1, 1))
	if !w.FindChunk(0, 1).Dirty {
		t.Fatalf("light in (0,0) should spread through (1,1)")
	}
}

func TestAddBlockDamage_Threshold(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	stone := blockID(t, "STONE")
	w.SetBlock(1, 5, 1, stone)

	if w.AddBlockDamage(1, 5, 1, 2) {
		t.Fatalf("below threshold destroyed")
	}
	if d := w.GetBlockDamage(1, 5, 1); d != 0 {
		t.Fatalf("below threshold recorded %d", d)
	}
	if w.AddBlockDamage(1, 5, 1, 60) {
		t.Fatalf("60/100 destroyed")
	}
	if !w.AddBlockDamage(1, 5, 1, 40) {
		t.Fatalf("100/100 not destroyed")
	}
	if w.AddBlockDamage(500, 5, 500, 40) {
		t.Fatalf("unloaded chunk reported destroyed")
	}
}

func TestBuilderBlock_Bounds(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	if w.BuilderBlock(1, 0, 1, blockID(t, "STONE")) {
		t.Fatalf("y=0 accepted")
	}
	if w.BuilderBlock(1, w.Tuning().WorldHeight, 1, blockID(t, "STONE")) {
		t.Fatalf("y=height accepted")
	}
	if !w.BuilderBlock(1, 1, 1, blockID(t, "STONE")) || w.GetBlock(1, 1, 1) != blockID(t, "STONE") {
		t.Fatalf("builder block failed")
	}
	if !w.BuilderBlock(1, 1, 1, blockID(t, "BRICK")) || w.GetBlock(1, 1, 1) != blockID(t, "BRICK") {
		t.Fatalf("builder replace failed")
	}
	if w.HighestBlock(1, 1) != 1 || w.HighestBlock(2, 2) != -1 {
		t.Fatalf("highest: %d %d", w.HighestBlock(1, 1), w.HighestBlock(2, 2))
	}
}

// lookAlongX puts the local player's eye at (x, 10, 0) facing +x.
func lookAlongX(w *World, x float32) *Player {
	pl := w.LocalPlayer()
	pl.Actor.Pos = mgl32.Vec3{x, 10 - w.Tuning().Player.EyeHeight, 0}
	pl.Actor.RX = math.Pi / 2
	pl.Actor.RY = 0
	return pl
}

func TestHitTest_AndFace(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	wood := blockID(t, "WOOD")
	w.SetBlock(5, 10, 0, wood)
	pl := lookAlongX(w, 0)

	x, y, z, v := w.HitTest(false, w.eye(pl), pl.Actor.RX, pl.Actor.RY)
	if x != 5 || y != 10 || z != 0 || v != wood {
		t.Fatalf("hit: (%d,%d,%d)=%d", x, y, z, v)
	}
	x, y, z, _ = w.HitTest(true, w.eye(pl), pl.Actor.RX, pl.Actor.RY)
	if x != 4 || y != 10 || z != 0 {
		t.Fatalf("previous: (%d,%d,%d)", x, y, z)
	}
	_, _, _, face, ok := w.HitTestFace(pl)
	if !ok || face != 0 {
		t.Fatalf("face: %d ok=%v", face, ok)
	}

	// Out of reach.
	pl.Actor.Pos[0] = -10
	if _, _, _, v := w.HitTest(false, w.eye(pl), pl.Actor.RX, pl.Actor.RY); v != 0 {
		t.Fatalf("hit beyond reach: %d", v)
	}
}

func TestBreakBlock_AccumulatesDamageAndClearsPlant(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	wood := blockID(t, "WOOD")
	w.SetBlock(5, 10, 0, wood)
	w.SetBlock(5, 11, 0, blockID(t, "TALL_GRASS"))
	lookAlongX(w, 0)

	if w.BreakBlock() {
		t.Fatalf("first hit broke a block with max damage 2")
	}
	if w.GetBlockDamage(5, 10, 0) != 1 {
		t.Fatalf("damage: %d", w.GetBlockDamage(5, 10, 0))
	}
	if !w.BreakBlock() {
		t.Fatalf("second hit did not break")
	}
	if w.GetBlock(5, 10, 0) != 0 || w.GetBlock(5, 11, 0) != 0 {
		t.Fatalf("block or plant left: %d %d", w.GetBlock(5, 10, 0), w.GetBlock(5, 11, 0))
	}
	if w.GetBlockDamage(5, 10, 0) != 0 {
		t.Fatalf("damage survived the block")
	}
}

func TestPlaceBlock_RefusesOverlap(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	stone := blockID(t, "STONE")
	w.SetBlock(5, 10, 0, stone)

	lookAlongX(w, 0)
	if !w.PlaceBlock(stone) || w.GetBlock(4, 10, 0) != stone {
		t.Fatalf("place failed")
	}
	lookAlongX(w, 3)
	if w.PlaceBlock(stone) {
		t.Fatalf("placed a block inside the player")
	}
	if w.GetBlock(3, 10, 0) != 0 {
		t.Fatalf("cell written anyway")
	}
	if w.PlaceBlock(0) || w.PlaceBlock(w.Blocks().Len()) {
		t.Fatalf("invalid item accepted")
	}
}

func TestSigns(t *testing.T) {
	net := &recordingNetwork{}
	w := newTestWorld(t, testTuning(), nil, net)
	mustChunk(t, w, 0, 0)

	w.SetSign(1, 2, 3, 1, "a")
	w.SetSign(1, 2, 3, 1, "b")
	w.SetSign(1, 2, 3, 9, "bad face")
	c := w.FindChunk(0, 0)
	if s, ok := c.Signs.Get(1, 2, 3, 1); !ok || s.Text != "b" || c.Signs.Len() != 1 {
		t.Fatalf("signs: %+v", c.Signs.All())
	}
	w.SetSign(1, 2, 3, 1, "")
	if c.Signs.Len() != 0 {
		t.Fatalf("empty text kept the sign")
	}
	if len(net.sent) != 3 {
		t.Fatalf("network: %v", net.sent)
	}
}
