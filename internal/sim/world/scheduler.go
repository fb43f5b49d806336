package world

import (
	"voxelcraft.ai/voxelclient/internal/sim/world/feature/workers"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mesh"
)

// noCandidate is the starting score; any real candidate scores lower.
const noCandidate = 0x0fffffff

// EnsureChunks runs one scheduling round around pl: install finished builds, build the
// chunks next to the player synchronously, then hand every idle worker its best
// candidate.
func (w *World) EnsureChunks(pl *Player) {
	w.CheckWorkers()
	w.ForceChunks(pl)
	for _, wk := range w.pool.Workers() {
		index := wk.Index()
		wk.Assign(func() *workers.Job { return w.ensureChunksWorker(pl, index) })
	}
}

// CheckWorkers installs the result of every finished worker. A chunk evicted while
// its build was in flight, or replaced by a snapshot import, is skipped; the job's
// copies are dropped either way.
func (w *World) CheckWorkers() {
	for _, wk := range w.pool.Workers() {
		wk.Reconcile(func(job *workers.Job) {
			c := w.FindChunk(job.P, job.Q)
			if c == nil || job.Epoch != w.epoch {
				return
			}
			if job.Load {
				c.Blocks = job.Blocks[1][1]
				c.Lights = job.Lights[1][1]
				c.Damage = job.Damage[1][1]
				w.requestChunk(job.P, job.Q)
			}
			w.installMesh(c, job.Result)
		})
	}
}

// ForceChunks builds the chunks within the force radius on the calling goroutine so
// the player never stands in an unbuilt chunk.
func (w *World) ForceChunks(pl *Player) {
	p, q := w.chunked(pl.Actor.Pos[0]), w.chunked(pl.Actor.Pos[2])
	r := w.tune.Radius.Force
	for dp := -r; dp <= r; dp++ {
		for dq := -r; dq <= r; dq++ {
			a, b := p+dp, q+dq
			c := w.FindChunk(a, b)
			if c == nil {
				var ok bool
				if c, ok = w.CreateChunk(a, b); !ok {
					continue
				}
			} else if !c.Dirty {
				continue
			}
			w.buildChunk(c)
		}
	}
}

// buildChunk meshes c in place from the live maps.
func (w *World) buildChunk(c *Chunk) {
	nb := &mesh.Neighborhood{P: c.P, Q: c.Q}
	for dp := -1; dp <= 1; dp++ {
		for dq := -1; dq <= 1; dq++ {
			if other := w.FindChunk(c.P+dp, c.Q+dq); other != nil {
				nb.Blocks[dp+1][dq+1] = other.Blocks
				nb.Lights[dp+1][dq+1] = other.Lights
			}
		}
	}
	c.Dirty = false
	w.installMesh(c, mesh.Build(nb, w.blocks, w.meshOpts))
}

func (w *World) installMesh(c *Chunk, res mesh.Result) {
	c.Mesh = &res
	c.Faces = res.Faces
	c.MinY = res.MinY
	c.MaxY = res.MaxY
	signs := mesh.BuildSigns(c.Signs.All())
	c.SignMesh = &signs
	c.SignFaces = signs.Faces
}

// ensureChunksWorker picks the best chunk for one worker and packages it as a job.
// Candidates are partitioned across workers by (|p| xor |q|) mod the worker count so
// two workers never build the same chunk. Visible chunks come first, then chunks
// without a mesh, then the nearest.
func (w *World) ensureChunksWorker(pl *Player, index int) *workers.Job {
	f := w.playerFrustum(pl)
	p, q := w.chunked(pl.Actor.Pos[0]), w.chunked(pl.Actor.Pos[2])
	r := w.tune.Radius.Create
	n := w.pool.Len()

	best, bestA, bestB := noCandidate, 0, 0
	for dp := -r; dp <= r; dp++ {
		for dq := -r; dq <= r; dq++ {
			a, b := p+dp, q+dq
			if (mathx.AbsInt(a)^mathx.AbsInt(b))%n != index {
				continue
			}
			c := w.FindChunk(a, b)
			if c != nil && !c.Dirty {
				continue
			}
			score := mathx.Chebyshev(dp, dq)
			if !f.ChunkVisible(a, b, 0, w.tune.WorldHeight, w.tune.ChunkSize) {
				score |= 1 << 24
			}
			if c != nil && c.Mesh != nil && c.Dirty {
				score |= 1 << 16
			}
			if score < best {
				best, bestA, bestB = score, a, b
			}
		}
	}
	if best == noCandidate {
		return nil
	}

	load := false
	c := w.FindChunk(bestA, bestB)
	if c == nil {
		if c = w.addChunk(bestA, bestB); c == nil {
			return nil
		}
		load = true
	}

	job := &workers.Job{P: c.P, Q: c.Q, Load: load, Epoch: w.epoch}
	for dp := -1; dp <= 1; dp++ {
		for dq := -1; dq <= 1; dq++ {
			other := c
			if dp != 0 || dq != 0 {
				other = w.FindChunk(c.P+dp, c.Q+dq)
			}
			if other == nil {
				continue
			}
			job.Blocks[dp+1][dq+1] = other.Blocks.Clone()
			job.Lights[dp+1][dq+1] = other.Lights.Clone()
			job.Damage[dp+1][dq+1] = other.Damage.Clone()
		}
	}
	c.Dirty = false
	return job
}

// chunkLoader loads new chunks on worker goroutines. It only sees the job's private
// maps and the goroutine-safe collaborators.
type chunkLoader struct {
	gen   Generator
	store Store
}

func (l chunkLoader) Load(job *workers.Job) {
	loadChunk(l.gen, l.store, job.P, job.Q, job.Blocks[1][1], job.Lights[1][1], job.Damage[1][1])
}

var _ workers.Loader = chunkLoader{}
