package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/tuning"
)

// Frustum holds the clip planes of a camera as (a, b, c, d) with ax+by+cz+d >= 0
// inside. Orthographic cameras only use the four side planes.
type Frustum struct {
	Planes [6]mgl32.Vec4
	Ortho  bool
}

// CameraMatrix is the view projection for a camera at pos looking along yaw rx and
// pitch ry. The far plane follows the render radius.
func CameraMatrix(cam tuning.Camera, pos mgl32.Vec3, rx, ry float32, radius, chunkSize int) mgl32.Mat4 {
	aspect := float32(cam.Width) / float32(cam.Height)
	far := float32(radius*chunkSize + 64)

	view := mgl32.HomogRotate3D(ry, mgl32.Vec3{cos32(rx), 0, sin32(rx)})
	view = view.Mul4(mgl32.HomogRotate3DY(-rx))
	view = view.Mul4(mgl32.Translate3D(-pos[0], -pos[1], -pos[2]))

	var proj mgl32.Mat4
	if cam.Ortho > 0 {
		size := cam.Ortho
		proj = mgl32.Ortho(-size*aspect, size*aspect, -size, size, -far, far)
	} else {
		proj = mgl32.Perspective(mgl32.DegToRad(cam.FOV), aspect, cam.ZNear, far)
	}
	return proj.Mul4(view)
}

// FrustumFrom extracts the clip planes of a view projection matrix.
func FrustumFrom(m mgl32.Mat4, ortho bool) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	return Frustum{
		Planes: [6]mgl32.Vec4{
			r3.Add(r0), r3.Sub(r0),
			r3.Add(r1), r3.Sub(r1),
			r3.Add(r2), r3.Sub(r2),
		},
		Ortho: ortho,
	}
}

// ChunkVisible tests the chunk's bounding box, border included, between miny and
// maxy. A chunk is culled only when all eight corners are outside one plane.
func (f *Frustum) ChunkVisible(p, q, miny, maxy, chunkSize int) bool {
	x := float32(p*chunkSize - 1)
	z := float32(q*chunkSize - 1)
	d := float32(chunkSize + 1)
	y0, y1 := float32(miny), float32(maxy)
	corners := [8]mgl32.Vec4{
		{x, y0, z, 1}, {x + d, y0, z, 1}, {x, y0, z + d, 1}, {x + d, y0, z + d, 1},
		{x, y1, z, 1}, {x + d, y1, z, 1}, {x, y1, z + d, 1}, {x + d, y1, z + d, 1},
	}
	n := 6
	if f.Ortho {
		n = 4
	}
	for i := 0; i < n; i++ {
		in := false
		for _, c := range corners {
			if f.Planes[i].Dot(c) >= 0 {
				in = true
				break
			}
		}
		if !in {
			return false
		}
	}
	return true
}

func (w *World) playerFrustum(pl *Player) Frustum {
	cam := w.tune.Camera
	m := CameraMatrix(cam, w.eye(pl), pl.Actor.RX, pl.Actor.RY, w.tune.Radius.Render, w.tune.ChunkSize)
	return FrustumFrom(m, cam.Ortho > 0)
}

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }
