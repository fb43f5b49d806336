package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/world/feature/movement"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// hitSteps is the ray marching resolution per block of distance.
const hitSteps = 32

func (w *World) eye(pl *Player) mgl32.Vec3 {
	return pl.Actor.Pos.Add(mgl32.Vec3{0, w.tune.Player.EyeHeight, 0})
}

// HitTest marches the sight ray from pos up to the player reach and returns the first
// native block it enters, or w == 0. With previous set the returned cell is the empty
// one just before the hit, which is where a placed block goes.
func (w *World) HitTest(previous bool, pos mgl32.Vec3, rx, ry float32) (x, y, z, v int) {
	p, q := w.chunked(pos[0]), w.chunked(pos[2])
	dir := movement.SightVector(rx, ry)
	best := float32(0)
	for _, c := range w.chunks {
		if ChunkDistance(c, p, q) > 1 {
			continue
		}
		hx, hy, hz, hw := marchRay(c.Blocks, w.tune.Player.Reach, previous, pos, dir)
		if hw <= 0 {
			continue
		}
		d := mgl32.Vec3{float32(hx), float32(hy), float32(hz)}.Sub(pos).Len()
		if best == 0 || d < best {
			best = d
			x, y, z, v = hx, hy, hz, hw
		}
	}
	return x, y, z, v
}

func marchRay(m *store.Map, reach float32, previous bool, pos, dir mgl32.Vec3) (x, y, z, v int) {
	step := dir.Mul(1.0 / hitSteps)
	px, py, pz := 0, 0, 0
	first := true
	n := int(reach * hitSteps)
	for i := 0; i < n; i++ {
		nx, ny, nz := mathx.Round(pos[0]), mathx.Round(pos[1]), mathx.Round(pos[2])
		if first || nx != px || ny != py || nz != pz {
			if hw := m.Get(nx, ny, nz); hw > 0 {
				if previous && !first {
					return px, py, pz, hw
				}
				return nx, ny, nz, hw
			}
			px, py, pz = nx, ny, nz
			first = false
		}
		pos = pos.Add(step)
	}
	return 0, 0, 0, 0
}

// HitTestFace reports the block face the player looks at. Faces 0-3 are the -x, +x,
// -z and +z sides; faces 4-7 are the top, rotated by the quadrant the player faces.
func (w *World) HitTestFace(pl *Player) (x, y, z, face int, ok bool) {
	eye := w.eye(pl)
	x, y, z, v := w.HitTest(false, eye, pl.Actor.RX, pl.Actor.RY)
	if !w.blocks.IsObstacle(v) {
		return 0, 0, 0, 0, false
	}
	hx, hy, hz, _ := w.HitTest(true, eye, pl.Actor.RX, pl.Actor.RY)
	dx, dy, dz := hx-x, hy-y, hz-z
	switch {
	case dx == -1 && dy == 0 && dz == 0:
		return x, y, z, 0, true
	case dx == 1 && dy == 0 && dz == 0:
		return x, y, z, 1, true
	case dx == 0 && dy == 0 && dz == -1:
		return x, y, z, 2, true
	case dx == 0 && dy == 0 && dz == 1:
		return x, y, z, 3, true
	case dx == 0 && dy == 1 && dz == 0:
		deg := int(math.Round(float64(mgl32.RadToDeg(float32(math.Atan2(
			float64(pl.Actor.Pos[0]-float32(hx)), float64(pl.Actor.Pos[2]-float32(hz))))))))
		if deg < 0 {
			deg += 360
		}
		return x, y, z, 4 + ((deg+45)/90)%4, true
	}
	return 0, 0, 0, 0, false
}
