package world

import (
	"sort"
	"time"

	"voxelcraft.ai/voxelclient/internal/persistence/snapshot"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// ExportSnapshot captures every loaded chunk and the local player. Chunks are sorted
// by key so equal worlds export equal snapshots.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	a := &w.LocalPlayer().Actor
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:   snapshot.Version,
			WorldID:   w.cfg.ID,
			Frame:     w.frame,
			CreatedAt: w.cfg.Now().UTC().Format(time.RFC3339),
		},
		Seed:         w.cfg.Seed,
		ChunkSize:    w.tune.ChunkSize,
		Height:       w.tune.WorldHeight,
		BlocksDigest: w.blocks.DefsDigest,
		Player:       snapshot.PlayerV1{X: a.Pos[0], Y: a.Pos[1], Z: a.Pos[2], RX: a.RX, RY: a.RY},
		Chunks:       w.exportChunkSnapshots(),
	}
	snap.Header.Chunks = len(snap.Chunks)
	return snap
}

func (w *World) exportChunkSnapshots() []snapshot.ChunkV1 {
	chunks := make([]*Chunk, len(w.chunks))
	copy(chunks, w.chunks)
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].P != chunks[j].P {
			return chunks[i].P < chunks[j].P
		}
		return chunks[i].Q < chunks[j].Q
	})
	out := make([]snapshot.ChunkV1, 0, len(chunks))
	for _, c := range chunks {
		ch := snapshot.ChunkV1{
			P:      c.P,
			Q:      c.Q,
			Blocks: exportEntries(c.Blocks),
			Lights: exportEntries(c.Lights),
			Damage: exportEntries(c.Damage),
		}
		for _, s := range c.Signs.All() {
			ch.Signs = append(ch.Signs, snapshot.SignV1{X: s.X, Y: s.Y, Z: s.Z, Face: s.Face, Text: s.Text})
		}
		out = append(out, ch)
	}
	return out
}

func exportEntries(m *store.Map) []snapshot.EntryV1 {
	if m.Len() == 0 {
		return nil
	}
	out := make([]snapshot.EntryV1, 0, m.Len())
	for _, e := range m.Entries() {
		out = append(out, snapshot.EntryV1{X: e.X, Y: e.Y, Z: e.Z, W: e.W})
	}
	return out
}
