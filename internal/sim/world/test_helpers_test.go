package world

import (
	"fmt"
	"sync"
	"testing"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// memStore is an in-memory Store that also records inserts for assertions.
type memStore struct {
	NopStore

	mu      sync.Mutex
	blocks  map[[2]int][]store.Entry
	inserts []string
	keys    map[[2]int]int
	commits int
}

func newMemStore() *memStore {
	return &memStore{blocks: map[[2]int][]store.Entry{}, keys: map[[2]int]int{}}
}

func (s *memStore) LoadBlocks(m *store.Map, p, q int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.blocks[[2]int{p, q}] {
		m.Set(e.X, e.Y, e.Z, e.W)
	}
}

func (s *memStore) InsertBlock(p, q, x, y, z, w int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]int{p, q}
	s.blocks[k] = append(s.blocks[k], store.Entry{X: x, Y: y, Z: z, W: w})
	s.inserts = append(s.inserts, fmt.Sprintf("block %d,%d %d,%d,%d=%d", p, q, x, y, z, w))
}

func (s *memStore) InsertLight(p, q, x, y, z, w int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = append(s.inserts, fmt.Sprintf("light %d,%d %d,%d,%d=%d", p, q, x, y, z, w))
}

func (s *memStore) GetKey(p, q int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[[2]int{p, q}]
}

func (s *memStore) SetKey(p, q, key int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[[2]int{p, q}] = key
}

func (s *memStore) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
}

func (s *memStore) insertLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.inserts))
	copy(out, s.inserts)
	return out
}

func (s *memStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = nil
}

type recordingNetwork struct {
	NopNetwork
	sent      []string
	requests  [][3]int
	positions int
}

func (n *recordingNetwork) SendBlock(x, y, z, w int) {
	n.sent = append(n.sent, fmt.Sprintf("B %d,%d,%d=%d", x, y, z, w))
}

func (n *recordingNetwork) SendLight(x, y, z, w int) {
	n.sent = append(n.sent, fmt.Sprintf("L %d,%d,%d=%d", x, y, z, w))
}

func (n *recordingNetwork) SendSign(x, y, z, face int, text string) {
	n.sent = append(n.sent, fmt.Sprintf("S %d,%d,%d/%d=%s", x, y, z, face, text))
}

func (n *recordingNetwork) SendPosition(x, y, z, rx, ry float32) { n.positions++ }

func (n *recordingNetwork) RequestChunk(p, q, key int) {
	n.requests = append(n.requests, [3]int{p, q, key})
}

func testTuning() tuning.Tuning {
	tu := tuning.Defaults()
	tu.Workers = 2
	return tu
}

func newTestWorld(t *testing.T, tu tuning.Tuning, st Store, net Network) *World {
	t.Helper()
	w, err := New(WorldConfig{Tuning: tu, Store: st, Network: net})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

func blockID(t *testing.T, name string) int {
	t.Helper()
	id, ok := catalogs.Default().ID(name)
	if !ok {
		t.Fatalf("missing block %s", name)
	}
	return id
}

func mustChunk(t *testing.T, w *World, p, q int) *Chunk {
	t.Helper()
	c, ok := w.CreateChunk(p, q)
	if !ok {
		t.Fatalf("create chunk (%d,%d) refused", p, q)
	}
	return c
}
