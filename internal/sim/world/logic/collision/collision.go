package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeExtent is the half size of a block.
const CubeExtent = 0.5

// Box is an axis-aligned box. Extent is the half size along each axis.
type Box struct {
	Center mgl32.Vec3
	Extent mgl32.Vec3
}

func BlockBox(x, y, z int) Box {
	return Box{
		Center: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Extent: mgl32.Vec3{CubeExtent, CubeExtent, CubeExtent},
	}
}

// World reports which cells stop movement.
type World interface {
	Obstacle(x, y, z int) bool
}

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// SweepBox moves a by v against the static box b. It returns the time of impact in
// [0, 1) and the normal of the struck face of b, or 1 and a zero normal when the boxes
// do not meet during this step.
func SweepBox(a, b Box, v mgl32.Vec3) (float32, mgl32.Vec3) {
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		return 1, mgl32.Vec3{}
	}
	var near, enter, exit [3]float32
	for i := 0; i < 3; i++ {
		var far float32
		if v[i] > 0 {
			near[i] = (b.Center[i] - b.Extent[i]) - (a.Center[i] + a.Extent[i])
			far = (b.Center[i] + b.Extent[i]) - (a.Center[i] - a.Extent[i])
		} else {
			near[i] = (b.Center[i] + b.Extent[i]) - (a.Center[i] - a.Extent[i])
			far = (b.Center[i] - b.Extent[i]) - (a.Center[i] + a.Extent[i])
		}
		if v[i] == 0 {
			enter[i], exit[i] = negInf, posInf
		} else {
			enter[i], exit[i] = near[i]/v[i], far/v[i]
		}
	}

	enterT := max(enter[0], enter[1], enter[2])
	exitT := min(exit[0], exit[1], exit[2])
	if enterT > exitT ||
		(enter[0] < 0 && enter[1] < 0 && enter[2] < 0) ||
		enter[0] > 1 || enter[1] > 1 || enter[2] > 1 {
		return 1, mgl32.Vec3{}
	}

	// Latest entering axis. Comparisons are strict, so a tie goes to the later axis.
	axis := 2
	switch {
	case enter[0] > enter[1] && enter[0] > enter[2]:
		axis = 0
	case enter[1] > enter[2]:
		axis = 1
	}
	var n mgl32.Vec3
	if near[axis] < 0 {
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	return enterT, n
}

// Broadphase is the box covering a for the whole move v.
func Broadphase(a Box, v mgl32.Vec3) Box {
	return Box{
		Center: a.Center.Add(v.Mul(0.5)),
		Extent: mgl32.Vec3{
			a.Extent[0] + abs32(v[0])/2,
			a.Extent[1] + abs32(v[1])/2,
			a.Extent[2] + abs32(v[2])/2,
		},
	}
}

// NearestBlocks returns the inclusive range of cells that may touch a.
func NearestBlocks(a Box) (lo, hi [3]int) {
	for i := 0; i < 3; i++ {
		lo[i] = int(math.Floor(float64(a.Center[i] - a.Extent[i])))
		hi[i] = int(math.Ceil(float64(a.Center[i] + a.Extent[i])))
	}
	return lo, hi
}

// Intersect reports whether a and b overlap. Touching faces count as overlap.
func Intersect(a, b Box) bool {
	for i := 0; i < 3; i++ {
		if a.Center[i]+a.Extent[i] < b.Center[i]-b.Extent[i] ||
			a.Center[i]-a.Extent[i] > b.Center[i]+b.Extent[i] {
			return false
		}
	}
	return true
}

func IntersectBlock(a Box, x, y, z int) bool {
	return Intersect(a, BlockBox(x, y, z))
}

// RoundCell is the cell containing p, rounding half away from zero.
func RoundCell(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Round(float64(p[0]))),
		int(math.Round(float64(p[1]))),
		int(math.Round(float64(p[2]))),
	}
}

// SweepWorld sweeps a by v against every obstacle it could reach and returns the
// earliest impact. The cell holding a's center is ignored, as are faces hidden behind
// another obstacle unless that obstacle is a's own cell.
func SweepWorld(w World, a Box, v mgl32.Vec3) (float32, mgl32.Vec3) {
	t := float32(1)
	var n mgl32.Vec3
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		return t, n
	}
	bb := Broadphase(a, v)
	cur := RoundCell(a.Center)
	lo, hi := NearestBlocks(bb)
	for bx := lo[0]; bx <= hi[0]; bx++ {
		for by := lo[1]; by <= hi[1]; by++ {
			for bz := lo[2]; bz <= hi[2]; bz++ {
				if bx == cur[0] && by == cur[1] && bz == cur[2] {
					continue
				}
				if !w.Obstacle(bx, by, bz) {
					continue
				}
				if !IntersectBlock(bb, bx, by, bz) {
					continue
				}
				st, sn := SweepBox(a, BlockBox(bx, by, bz), v)
				if st < 0 || st >= 1 {
					continue
				}
				fx, fy, fz := bx+int(sn[0]), by+int(sn[1]), bz+int(sn[2])
				own := fx == cur[0] && fy == cur[1] && fz == cur[2]
				if !own && w.Obstacle(fx, fy, fz) {
					continue
				}
				if st < t {
					t, n = st, sn
				}
			}
		}
	}
	return t, n
}

// IntersectWorld returns the obstacle overlapping a whose center is nearest a's center.
func IntersectWorld(w World, a Box) ([3]int, bool) {
	var best [3]int
	found := false
	dsq := posInf
	lo, hi := NearestBlocks(a)
	for bx := lo[0]; bx <= hi[0]; bx++ {
		for by := lo[1]; by <= hi[1]; by++ {
			for bz := lo[2]; bz <= hi[2]; bz++ {
				if !w.Obstacle(bx, by, bz) || !IntersectBlock(a, bx, by, bz) {
					continue
				}
				d := a.Center.Sub(mgl32.Vec3{float32(bx), float32(by), float32(bz)})
				if s := d.Dot(d); s < dsq {
					dsq, best, found = s, [3]int{bx, by, bz}, true
				}
			}
		}
	}
	return best, found
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
