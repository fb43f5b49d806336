package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/world/logic/collision"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
)

// GetBlock returns 0 when the owning chunk is not loaded.
func (w *World) GetBlock(x, y, z int) int {
	c := w.findChunkXZ(x, z)
	if c == nil {
		return 0
	}
	return c.Blocks.Get(x, y, z)
}

// Obstacle implements collision.World.
func (w *World) Obstacle(x, y, z int) bool {
	return w.blocks.IsObstacle(w.GetBlock(x, y, z))
}

func (w *World) validBlock(v int) bool {
	return mathx.AbsInt(v) < w.blocks.Len()
}

// SetBlock is a local edit: it updates the owning chunk, the border shadow in every
// neighbor whose border covers the cell, and tells the server.
func (w *World) SetBlock(x, y, z, v int) {
	p, q := w.chunkedInt(x), w.chunkedInt(z)
	from := w.GetBlock(x, y, z)
	w.setBlockIn(p, q, x, y, z, v, true)
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if dx != 0 && w.chunkedInt(x+dx) == p {
				continue
			}
			if dz != 0 && w.chunkedInt(z+dz) == q {
				continue
			}
			w.setBlockIn(p+dx, q+dz, x, y, z, -v, true)
		}
	}
	w.net.SendBlock(x, y, z, v)
	w.auditBlock("SET_BLOCK", x, y, z, from, v)
}

// setBlockIn writes v into chunk (p, q) and persists it. Only a change dirties the
// chunk. Edits for chunks that are not loaded still reach the store. Clearing a cell
// resets its damage and, in its own chunk, removes its signs and light.
func (w *World) setBlockIn(p, q, x, y, z, v int, dirty bool) bool {
	changed := false
	c := w.FindChunk(p, q)
	if c != nil {
		if c.Blocks.Set(x, y, z, v) {
			changed = true
			if dirty {
				w.MarkDirty(c)
			}
			w.store.InsertBlock(p, q, x, y, z, v)
		}
	} else {
		w.store.InsertBlock(p, q, x, y, z, v)
	}
	if v != 0 {
		return changed
	}
	native := w.chunkedInt(x) == p && w.chunkedInt(z) == q
	if c != nil && c.Damage.Set(x, y, z, 0) && native {
		w.store.InsertDamage(p, q, x, y, z, 0)
	}
	if native {
		w.UnsetSign(x, y, z)
		w.SetLight(p, q, x, y, z, 0)
	}
	return changed
}

// BuilderBlock replaces the cell with v, clearing a destructable block first. Cells
// at or below the bedrock row and at or above the world height are refused.
func (w *World) BuilderBlock(x, y, z, v int) bool {
	if y <= 0 || y >= w.tune.WorldHeight {
		return false
	}
	if w.blocks.IsDestructable(w.GetBlock(x, y, z)) {
		w.SetBlock(x, y, z, 0)
	}
	if v != 0 {
		w.SetBlock(x, y, z, v)
	}
	return true
}

// HighestBlock is the top obstacle y in the column holding (x, z), or -1 when there is
// none or the chunk is not loaded.
func (w *World) HighestBlock(x, z float32) int {
	nx, nz := mathx.Round(x), mathx.Round(z)
	c := w.FindChunk(w.chunked(x), w.chunked(z))
	if c == nil {
		return -1
	}
	for y := w.tune.WorldHeight - 1; y >= 0; y-- {
		if w.blocks.IsObstacle(c.Blocks.Get(nx, y, nz)) {
			return y
		}
	}
	return -1
}

// BreakBlock damages the block the local player looks at and clears it once the
// damage reaches the block's limit. A plant resting on it goes too.
func (w *World) BreakBlock() bool {
	pl := w.LocalPlayer()
	hx, hy, hz, hw := w.HitTest(false, w.eye(pl), pl.Actor.RX, pl.Actor.RY)
	if hy <= 0 || hy >= w.tune.WorldHeight || !w.blocks.IsDestructable(hw) {
		return false
	}
	if !w.AddBlockDamage(hx, hy, hz, w.tune.Player.AttackDamage) {
		return false
	}
	w.SetBlock(hx, hy, hz, 0)
	if w.blocks.IsPlant(w.GetBlock(hx, hy+1, hz)) {
		w.SetBlock(hx, hy+1, hz, 0)
	}
	return true
}

// PlaceBlock puts v against the face the local player looks at, unless the new block
// would overlap the player.
func (w *World) PlaceBlock(v int) bool {
	if v == 0 || !w.validBlock(v) {
		return false
	}
	pl := w.LocalPlayer()
	hx, hy, hz, hw := w.HitTest(true, w.eye(pl), pl.Actor.RX, pl.Actor.RY)
	if hy <= 0 || hy >= w.tune.WorldHeight || !w.blocks.IsObstacle(hw) {
		return false
	}
	if collision.IntersectBlock(w.playerBox(pl), hx, hy, hz) {
		return false
	}
	w.SetBlock(hx, hy, hz, v)
	return true
}

func (w *World) playerBox(pl *Player) collision.Box {
	e := w.tune.Player
	return collision.Box{Center: pl.Actor.Pos, Extent: mgl32.Vec3{e.Width, e.Height, e.Width}}
}

func (w *World) auditBlock(action string, x, y, z, from, to int) {
	if w.audit == nil {
		return
	}
	err := w.audit.WriteAudit(AuditEntry{
		Time:   w.cfg.Now().UTC().Format(time.RFC3339Nano),
		Actor:  w.LocalPlayer().ID,
		Action: action,
		Pos:    [3]int{x, y, z},
		From:   from,
		To:     to,
	})
	if err != nil {
		w.logger.Printf("audit: %v", err)
	}
}
