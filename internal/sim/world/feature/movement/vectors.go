package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SightVector is the unit view direction for yaw rx and pitch ry, in radians.
func SightVector(rx, ry float32) mgl32.Vec3 {
	m := cos32(ry)
	return mgl32.Vec3{
		cos32(rx-mgl32.DegToRad(90)) * m,
		sin32(ry),
		sin32(rx-mgl32.DegToRad(90)) * m,
	}
}

// MotionVector turns strafe input (sx, sz in -1..1) into an acceleration direction.
// Flying follows the pitch when moving forward or back.
func MotionVector(flying bool, sz, sx int, rx, ry float32) mgl32.Vec3 {
	if sz == 0 && sx == 0 {
		return mgl32.Vec3{}
	}
	strafe := float32(math.Atan2(float64(sz), float64(sx)))
	if !flying {
		return mgl32.Vec3{cos32(rx + strafe), 0, sin32(rx + strafe)}
	}
	m := cos32(ry)
	y := sin32(ry)
	if sx != 0 {
		if sz == 0 {
			y = 0
		}
		m = 1
	}
	if sz > 0 {
		y = -y
	}
	return mgl32.Vec3{cos32(rx+strafe) * m, y, sin32(rx+strafe) * m}
}

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }
