package world

import (
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// Initial map capacities; maps grow on demand.
const (
	blockMapCapacity  = 1024
	sparseMapCapacity = 16
)

func (w *World) chunked(x float32) int { return mathx.Chunked(x, w.tune.ChunkSize) }

func (w *World) chunkedInt(x int) int { return mathx.ChunkedInt(x, w.tune.ChunkSize) }

// ChunkDistance is the Chebyshev distance in chunks between c and (p, q).
func ChunkDistance(c *Chunk, p, q int) int {
	return mathx.Chebyshev(c.P-p, c.Q-q)
}

func (w *World) ChunkCount() int { return len(w.chunks) }

// Chunks returns the registry in storage order, which changes on eviction.
func (w *World) Chunks() []*Chunk { return w.chunks }

func (w *World) FindChunk(p, q int) *Chunk {
	i, ok := w.index[ChunkKey{P: p, Q: q}]
	if !ok {
		return nil
	}
	return w.chunks[i]
}

func (w *World) findChunkXZ(x, z int) *Chunk {
	return w.FindChunk(w.chunkedInt(x), w.chunkedInt(z))
}

// mapOrigin anchors chunk maps one block before the chunk so the border fits.
func (w *World) mapOrigin(p, q int) (int, int, int) {
	cs := w.tune.ChunkSize
	return p*cs - 1, 0, q*cs - 1
}

// addChunk registers an empty chunk. It returns nil when the registry is full.
func (w *World) addChunk(p, q int) *Chunk {
	if len(w.chunks) >= w.tune.MaxChunks {
		return nil
	}
	dx, dy, dz := w.mapOrigin(p, q)
	c := &Chunk{
		P:      p,
		Q:      q,
		Blocks: store.NewMap(dx, dy, dz, blockMapCapacity),
		Lights: store.NewMap(dx, dy, dz, sparseMapCapacity),
		Damage: store.NewMap(dx, dy, dz, sparseMapCapacity),
	}
	w.index[c.Key()] = len(w.chunks)
	w.chunks = append(w.chunks, c)
	w.store.LoadSigns(&c.Signs, p, q)
	w.MarkDirty(c)
	return c
}

// CreateChunk registers (p, q) and loads it synchronously from the generator and the
// store, then asks the server for its edits. An existing chunk is returned as is.
// It reports false when the registry is full.
func (w *World) CreateChunk(p, q int) (*Chunk, bool) {
	if c := w.FindChunk(p, q); c != nil {
		return c, true
	}
	c := w.addChunk(p, q)
	if c == nil {
		return nil, false
	}
	loadChunk(w.gen, w.store, p, q, c.Blocks, c.Lights, c.Damage)
	w.requestChunk(p, q)
	return c, true
}

func (w *World) requestChunk(p, q int) {
	w.net.RequestChunk(p, q, w.store.GetKey(p, q))
}

// loadChunk fills fresh chunk maps: generated terrain first, stored edits on top.
// It runs on worker goroutines and must not touch the registry.
func loadChunk(gen Generator, st Store, p, q int, blocks, lights, damage *store.Map) {
	if gen != nil {
		gen.Generate(p, q, func(x, y, z, w int) {
			blocks.Set(x, y, z, w)
		})
	}
	st.LoadBlocks(blocks, p, q)
	st.LoadLights(lights, p, q)
	st.TrimDamage(p, q)
	st.LoadDamage(damage, p, q)
}

// MarkDirty flags c for rebuilding. Light spills across chunk edges, so when c or
// any neighbor holds a light the whole 3x3 neighborhood is flagged.
func (w *World) MarkDirty(c *Chunk) {
	c.Dirty = true
	if !w.hasLights(c) {
		return
	}
	for dp := -1; dp <= 1; dp++ {
		for dq := -1; dq <= 1; dq++ {
			if other := w.FindChunk(c.P+dp, c.Q+dq); other != nil {
				other.Dirty = true
			}
		}
	}
}

func (w *World) hasLights(c *Chunk) bool {
	if !w.tune.Lighting.ShowLights {
		return false
	}
	for dp := -1; dp <= 1; dp++ {
		for dq := -1; dq <= 1; dq++ {
			other := c
			if dp != 0 || dq != 0 {
				other = w.FindChunk(c.P+dp, c.Q+dq)
			}
			if other != nil && other.Lights.Len() > 0 {
				return true
			}
		}
	}
	return false
}

// EvictChunks drops every chunk keep rejects. The last chunk is swapped into each
// hole. It returns the number of evicted chunks.
func (w *World) EvictChunks(keep func(*Chunk) bool) int {
	n := 0
	for i := 0; i < len(w.chunks); {
		c := w.chunks[i]
		if keep(c) {
			i++
			continue
		}
		last := len(w.chunks) - 1
		delete(w.index, c.Key())
		if i != last {
			moved := w.chunks[last]
			w.chunks[i] = moved
			w.index[moved.Key()] = i
		}
		w.chunks[last] = nil
		w.chunks = w.chunks[:last]
		n++
	}
	return n
}

// DeleteChunks evicts chunks that are at least the delete radius away from the local
// player and from both observed players.
func (w *World) DeleteChunks() int {
	observed := w.observedPlayers()
	r := w.tune.Radius.Delete
	return w.EvictChunks(func(c *Chunk) bool {
		for _, pl := range observed {
			p, q := w.chunked(pl.Actor.Pos[0]), w.chunked(pl.Actor.Pos[2])
			if ChunkDistance(c, p, q) < r {
				return true
			}
		}
		return false
	})
}
