package mesh

// volume is the padded working grid around a chunk: the chunk itself, one full chunk on
// each side in x/z and one cell of padding on every face.
type volume struct {
	ox, oy, oz int
	xz, ySize  int
	lo, hi     int // xz range whose light can reach the center chunk

	opaque  []bool
	light   []int8
	highest []int

	shadeSteps   int
	shadeFalloff float32
}

func newVolume(p, q int, opts Options) *volume {
	cs := opts.ChunkSize
	xz := cs*3 + 2
	ySize := opts.Height + 2
	return &volume{
		ox:           p*cs - cs - 1,
		oy:           -1,
		oz:           q*cs - cs - 1,
		xz:           xz,
		ySize:        ySize,
		lo:           cs,
		hi:           cs*2 + 1,
		opaque:       make([]bool, xz*xz*ySize),
		light:        make([]int8, xz*xz*ySize),
		highest:      make([]int, xz*xz),
		shadeSteps:   opts.ShadeSteps,
		shadeFalloff: opts.ShadeFalloff,
	}
}

func (v *volume) local(ex, ey, ez int) (x, y, z int) {
	return ex - v.ox, ey - v.oy, ez - v.oz
}

func (v *volume) in(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < v.xz && y < v.ySize && z < v.xz
}

func (v *volume) idx(x, y, z int) int { return (y*v.xz+x)*v.xz + z }

func (v *volume) col(x, z int) int { return x*v.xz + z }

func (v *volume) opaqueAt(x, y, z int) bool {
	return v.in(x, y, z) && v.opaque[v.idx(x, y, z)]
}

func (v *volume) lightAt(x, y, z int) int {
	if !v.in(x, y, z) {
		return 0
	}
	return int(v.light[v.idx(x, y, z)])
}

type fillStep struct {
	x, y, z, w int
	force      bool
}

// lightFill spreads a source of strength w, losing one level per step. The source cell
// is lit even when opaque.
func (v *volume) lightFill(x, y, z, w int) {
	stack := []fillStep{{x, y, z, w, true}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.x+s.w < v.lo || s.z+s.w < v.lo || s.x-s.w > v.hi || s.z-s.w > v.hi {
			continue
		}
		if !v.in(s.x, s.y, s.z) {
			continue
		}
		i := v.idx(s.x, s.y, s.z)
		if int(v.light[i]) >= s.w {
			continue
		}
		if !s.force && v.opaque[i] {
			continue
		}
		v.light[i] = int8(s.w)
		n := s.w - 1
		stack = append(stack,
			fillStep{s.x, s.y, s.z + 1, n, false},
			fillStep{s.x, s.y, s.z - 1, n, false},
			fillStep{s.x, s.y + 1, s.z, n, false},
			fillStep{s.x, s.y - 1, s.z, n, false},
			fillStep{s.x + 1, s.y, s.z, n, false},
			fillStep{s.x - 1, s.y, s.z, n, false},
		)
	}
}

// samples is the 3x3x3 neighborhood of a block, indexed dx-major then dy then dz.
type samples struct {
	opaque [27]bool
	light  [27]int
	shade  [27]float32
}

func (v *volume) sample(x, y, z int) samples {
	var s samples
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				s.opaque[i] = v.opaqueAt(x+dx, y+dy, z+dz)
				s.light[i] = v.lightAt(x+dx, y+dy, z+dz)
				if v.in(x+dx, 0, z+dz) && y+dy <= v.highest[v.col(x+dx, z+dz)] {
					for oy := 0; oy < v.shadeSteps; oy++ {
						if v.opaqueAt(x+dx, y+dy+oy, z+dz) {
							s.shade[i] = 1 - float32(oy)*v.shadeFalloff
							break
						}
					}
				}
				i++
			}
		}
	}
	return s
}
