package world

import (
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/persistence/snapshot"
)

func sortedChunks(in []snapshot.ChunkV1) []snapshot.ChunkV1 {
	for _, ch := range in {
		for _, es := range [][]snapshot.EntryV1{ch.Blocks, ch.Lights, ch.Damage} {
			sort.Slice(es, func(i, j int) bool {
				a, b := es[i], es[j]
				if a.X != b.X {
					return a.X < b.X
				}
				if a.Y != b.Y {
					return a.Y < b.Y
				}
				return a.Z < b.Z
			})
		}
	}
	return in
}

func TestSnapshotRoundTrip_File(t *testing.T) {
	a := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, a, 0, 0)
	mustChunk(t, a, 1, 0)
	stone := blockID(t, "STONE")
	a.SetBlock(31, 10, 5, stone)
	a.SetBlock(3, 4, 5, stone)
	a.ToggleLight(3, 5, 5)
	a.SetSign(31, 10, 5, 1, "east")
	if !a.SetBlockDamage(3, 4, 5, 2) {
		t.Fatalf("damage refused")
	}
	a.LocalPlayer().Actor.Pos = mgl32.Vec3{10, 20, 30}
	a.LocalPlayer().Actor.RX = 0.5
	a.frame = 1

	snap := a.ExportSnapshot()
	if snap.Header.Chunks != 2 || snap.Header.Frame != 1 {
		t.Fatalf("header: %+v", snap.Header)
	}
	path := filepath.Join(t.TempDir(), "world.snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	b := newTestWorld(t, testTuning(), nil, nil)
	if err := b.ImportSnapshot(got); err != nil {
		t.Fatalf("import: %v", err)
	}
	for _, c := range b.Chunks() {
		if !c.Dirty {
			t.Fatalf("imported chunk (%d,%d) not dirty", c.P, c.Q)
		}
	}
	if b.GetBlock(3, 4, 5) != stone || b.GetLight(3, 5, 5) != b.tune.Lighting.MaxLight || b.GetBlockDamage(3, 4, 5) != 2 {
		t.Fatalf("cells lost in import")
	}
	// The shadow copy in the east neighbor survives.
	if got := b.FindChunk(1, 0).Blocks.Get(31, 10, 5); got != -stone {
		t.Fatalf("border shadow: %d", got)
	}
	if b.Frame() != 1 || b.LocalPlayer().Actor.Pos != (mgl32.Vec3{10, 20, 30}) || b.LocalPlayer().Actor.RX != 0.5 {
		t.Fatalf("player or frame not restored")
	}

	again := b.ExportSnapshot()
	if !reflect.DeepEqual(sortedChunks(again.Chunks), sortedChunks(snap.Chunks)) {
		t.Fatalf("chunks differ after round trip")
	}
}

func TestImportSnapshot_Rejects(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	base := w.ExportSnapshot()

	cases := map[string]func(s *snapshot.SnapshotV1){
		"chunk size": func(s *snapshot.SnapshotV1) { s.ChunkSize = 16 },
		"height":     func(s *snapshot.SnapshotV1) { s.Height = 128 },
		"block table": func(s *snapshot.SnapshotV1) {
			s.BlocksDigest = "bogus"
		},
		"repeated chunk": func(s *snapshot.SnapshotV1) {
			s.Chunks = append(s.Chunks, s.Chunks[0])
		},
		"unknown block": func(s *snapshot.SnapshotV1) {
			s.Chunks[0].Blocks = append(s.Chunks[0].Blocks, snapshot.EntryV1{X: 1, Y: 1, Z: 1, W: 500})
		},
	}
	for name, mutate := range cases {
		s := base
		s.Chunks = append([]snapshot.ChunkV1(nil), base.Chunks...)
		s.Chunks[0].Blocks = append([]snapshot.EntryV1(nil), base.Chunks[0].Blocks...)
		mutate(&s)
		err := w.ImportSnapshot(s)
		if err == nil || !strings.Contains(err.Error(), "snapshot") {
			t.Fatalf("%s: expected snapshot error, got %v", name, err)
		}
		if w.ChunkCount() != 1 {
			t.Fatalf("%s: registry changed by a rejected import", name)
		}
	}
}

func TestImportSnapshot_ReleasesReplacedChunks(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	for p := 0; p < 4; p++ {
		mustChunk(t, w, p, 0)
	}
	keep := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, keep, 7, 7)

	if err := w.ImportSnapshot(keep.ExportSnapshot()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if w.ChunkCount() != 1 || w.FindChunk(7, 7) == nil {
		t.Fatalf("registry after import: %d chunks", w.ChunkCount())
	}
	for i, c := range w.chunks[len(w.chunks):cap(w.chunks)] {
		if c != nil {
			t.Fatalf("slot %d past the registry still holds chunk (%d,%d)", len(w.chunks)+i, c.P, c.Q)
		}
	}
}
