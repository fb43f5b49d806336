package world

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/world/feature/workers"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mesh"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/gen"
)

type transitionLog struct {
	mu  sync.Mutex
	seq map[int][]workers.State
}

func (l *transitionLog) record(index int, from, to workers.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seq[index] == nil {
		l.seq[index] = []workers.State{from}
	}
	l.seq[index] = append(l.seq[index], to)
}

func TestEnsureChunks_BuildsCreateRadius(t *testing.T) {
	tu := testTuning()
	tu.ChunkSize = 16
	tu.WorldHeight = 64
	tu.Radius.Create = 2
	tu.Radius.Render = 2
	tu.Radius.Delete = 4

	pal, err := gen.PaletteFrom(catalogs.Default())
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	net := &recordingNetwork{}
	tl := &transitionLog{seq: map[int][]workers.State{}}
	w, err := New(WorldConfig{
		Tuning:             tu,
		Network:            net,
		Generator:          gen.New(7, tu.ChunkSize, tu.WorldHeight, pal),
		OnWorkerTransition: tl.record,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	pl := w.LocalPlayer()
	pl.Actor.Pos = mgl32.Vec3{8, 40, 8}

	ready := func() bool {
		for _, wk := range w.pool.Workers() {
			if wk.State() != workers.Idle {
				return false
			}
		}
		for p := -2; p <= 2; p++ {
			for q := -2; q <= 2; q++ {
				c := w.FindChunk(p, q)
				if c == nil || c.Dirty || c.Mesh == nil {
					return false
				}
			}
		}
		return true
	}
	deadline := time.Now().Add(20 * time.Second)
	for !ready() {
		if time.Now().After(deadline) {
			t.Fatalf("chunks not built in time: %d loaded", w.ChunkCount())
		}
		w.EnsureChunks(pl)
		time.Sleep(time.Millisecond)
	}

	if n := w.ChunkCount(); n != 25 {
		t.Fatalf("chunk count: got %d want 25", n)
	}
	if len(net.requests) != 25 {
		t.Fatalf("chunk requests: got %d want 25", len(net.requests))
	}
	c := w.FindChunk(0, 0)
	if c.Blocks.Len() == 0 || c.Faces == 0 {
		t.Fatalf("center chunk empty: blocks=%d faces=%d", c.Blocks.Len(), c.Faces)
	}
	if len(c.Mesh.Data) != c.Faces*mesh.FloatsPerFace {
		t.Fatalf("mesh size %d for %d faces", len(c.Mesh.Data), c.Faces)
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	busy := 0
	for index, seq := range tl.seq {
		want := []workers.State{workers.Idle, workers.Busy, workers.Done}
		for i, s := range seq {
			if s != want[i%3] {
				t.Fatalf("worker %d transition %d: got %v want %v (%v)", index, i, s, want[i%3], seq)
			}
			if s == workers.Busy {
				busy++
			}
		}
	}
	// The 3x3 around the player is built synchronously; the rest goes to workers.
	if busy != 16 {
		t.Fatalf("worker jobs: got %d want 16", busy)
	}
}

func TestEnsureChunks_RespectsCapacity(t *testing.T) {
	tu := testTuning()
	tu.MaxChunks = 9
	w := newTestWorld(t, tu, nil, nil)
	pl := w.LocalPlayer()
	for i := 0; i < 50; i++ {
		w.EnsureChunks(pl)
	}
	if n := w.ChunkCount(); n != 9 {
		t.Fatalf("chunk count: got %d want 9", n)
	}
	if _, ok := w.CreateChunk(100, 100); ok {
		t.Fatalf("create beyond capacity accepted")
	}
	if _, ok := w.CreateChunk(0, 0); !ok {
		t.Fatalf("existing chunk refused")
	}
}

func TestDeleteChunks_KeepsObservedPlayers(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	for _, k := range [][2]int{{0, 0}, {13, 0}, {14, 0}, {40, 40}, {-20, 3}} {
		mustChunk(t, w, k[0], k[1])
	}
	if !w.UpsertPlayer(9, "far", mgl32.Vec3{40 * 32, 50, 40 * 32}, 0, 0) {
		t.Fatalf("upsert refused")
	}
	w.Observe(1, 9)

	if n := w.DeleteChunks(); n != 2 {
		t.Fatalf("deleted %d want 2", n)
	}
	for _, k := range [][2]int{{0, 0}, {13, 0}, {40, 40}} {
		c := w.FindChunk(k[0], k[1])
		if c == nil || c.P != k[0] || c.Q != k[1] {
			t.Fatalf("chunk %v lost", k)
		}
	}
	if w.FindChunk(14, 0) != nil || w.FindChunk(-20, 3) != nil {
		t.Fatalf("far chunks kept")
	}

	w.Observe(1, -1)
	if n := w.DeleteChunks(); n != 1 || w.FindChunk(40, 40) != nil {
		t.Fatalf("unobserved chunk kept")
	}
}

func TestFrustum_CullsBehindCamera(t *testing.T) {
	tu := testTuning()
	m := CameraMatrix(tu.Camera, mgl32.Vec3{16, 40, 16}, 0, 0, tu.Radius.Render, tu.ChunkSize)
	f := FrustumFrom(m, false)
	// Yaw 0 looks toward -z.
	if !f.ChunkVisible(0, -3, 0, 256, tu.ChunkSize) {
		t.Fatalf("chunk ahead culled")
	}
	if f.ChunkVisible(0, 5, 0, 256, tu.ChunkSize) {
		t.Fatalf("chunk behind visible")
	}
	if !f.ChunkVisible(0, 0, 0, 256, tu.ChunkSize) {
		t.Fatalf("own chunk culled")
	}
}
