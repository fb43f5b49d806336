package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/persistence/snapshot"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// ImportSnapshot replaces the registry with the snapshot's chunks and moves the local
// player. Every imported chunk is dirty so the scheduler rebuilds it. In-flight
// builds for the old chunks are discarded on reconciliation.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) error {
	if snap.ChunkSize != w.tune.ChunkSize {
		return fmt.Errorf("snapshot chunk size mismatch: got %d want %d", snap.ChunkSize, w.tune.ChunkSize)
	}
	if snap.Height != w.tune.WorldHeight {
		return fmt.Errorf("snapshot height mismatch: got %d want %d", snap.Height, w.tune.WorldHeight)
	}
	if snap.BlocksDigest != "" && snap.BlocksDigest != w.blocks.DefsDigest {
		return fmt.Errorf("snapshot block table mismatch: got %s want %s", snap.BlocksDigest, w.blocks.DefsDigest)
	}
	if len(snap.Chunks) > w.tune.MaxChunks {
		return fmt.Errorf("snapshot holds %d chunks, capacity is %d", len(snap.Chunks), w.tune.MaxChunks)
	}
	if err := w.importChunkSnapshots(snap.Chunks); err != nil {
		return err
	}
	a := &w.LocalPlayer().Actor
	a.Pos = mgl32.Vec3{snap.Player.X, snap.Player.Y, snap.Player.Z}
	a.RX, a.RY = snap.Player.RX, snap.Player.RY
	a.Vel = mgl32.Vec3{}
	w.frame = snap.Header.Frame
	return nil
}

func (w *World) importChunkSnapshots(chunks []snapshot.ChunkV1) error {
	seen := make(map[ChunkKey]bool, len(chunks))
	for _, ch := range chunks {
		k := ChunkKey{P: ch.P, Q: ch.Q}
		if seen[k] {
			return fmt.Errorf("snapshot chunk (%d,%d) repeated", ch.P, ch.Q)
		}
		seen[k] = true
		for _, e := range ch.Blocks {
			if !w.validBlock(e.W) {
				return fmt.Errorf("snapshot chunk (%d,%d): unknown block %d", ch.P, ch.Q, e.W)
			}
		}
	}

	w.epoch++
	clear(w.chunks)
	w.chunks = w.chunks[:0]
	w.index = make(map[ChunkKey]int, len(chunks))
	for _, ch := range chunks {
		dx, dy, dz := w.mapOrigin(ch.P, ch.Q)
		c := &Chunk{
			P:      ch.P,
			Q:      ch.Q,
			Blocks: store.MapFromEntries(dx, dy, dz, importEntries(ch.Blocks)),
			Lights: store.MapFromEntries(dx, dy, dz, importEntries(ch.Lights)),
			Damage: store.MapFromEntries(dx, dy, dz, importEntries(ch.Damage)),
			Dirty:  true,
		}
		for _, s := range ch.Signs {
			c.Signs.Add(store.Sign{X: s.X, Y: s.Y, Z: s.Z, Face: s.Face, Text: s.Text})
		}
		w.index[c.Key()] = len(w.chunks)
		w.chunks = append(w.chunks, c)
	}
	return nil
}

func importEntries(in []snapshot.EntryV1) []store.Entry {
	out := make([]store.Entry, len(in))
	for i, e := range in {
		out[i] = store.Entry{X: e.X, Y: e.Y, Z: e.Z, W: e.W}
	}
	return out
}
