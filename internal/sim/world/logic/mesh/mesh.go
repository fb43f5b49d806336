package mesh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/noise"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// FloatsPerVertex is the cube/plant vertex layout: position, normal, uv, ao, light.
const (
	FloatsPerVertex = 10
	VertsPerFace    = 6
	FloatsPerFace   = FloatsPerVertex * VertsPerFace
)

// Props answers block property questions. Ids may be negative (border shadows).
type Props interface {
	IsTransparent(w int) bool
	IsPlant(w int) bool
	Tiles(w int) [6]int
	PlantTile(w int) int
}

// Neighborhood is the 3x3 chunk window around (P, Q). Index [1][1] is the center;
// nil maps are treated as empty.
type Neighborhood struct {
	P, Q   int
	Blocks [3][3]*store.Map
	Lights [3][3]*store.Map
}

type Options struct {
	ChunkSize    int
	Height       int
	ShowLights   bool
	MaxLight     int
	ShadeSteps   int
	ShadeFalloff float32
	AOCurve      [4]float32
	PlantNoise   tuning.Noise

	// Noise drives plant rotation. Nil uses noise.Default().
	Noise *noise.Field
}

func OptionsFrom(t tuning.Tuning) Options {
	return Options{
		ChunkSize:    t.ChunkSize,
		Height:       t.WorldHeight,
		ShowLights:   t.Lighting.ShowLights,
		MaxLight:     t.Lighting.MaxLight,
		ShadeSteps:   t.Mesh.ShadeSteps,
		ShadeFalloff: t.Mesh.ShadeFalloff,
		AOCurve:      t.Mesh.AOCurve,
		PlantNoise:   t.Mesh.PlantNoise,
	}
}

type Result struct {
	Faces int
	MinY  int
	MaxY  int
	Data  []float32
	// Digest is xxhash64 over Data; equal digests mean an identical buffer.
	Digest uint64
}

type exposed struct {
	x, y, z    int // padded volume coordinates
	ex, ey, ez int
	w          int
	faces      [6]bool
	total      int
}

// Build produces the geometry of the center chunk of nb. It is a pure function of its
// inputs and never touches the maps' owners.
func Build(nb *Neighborhood, props Props, opts Options) Result {
	v := newVolume(nb.P, nb.Q, opts)

	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			nb.Blocks[a][b].Each(func(ex, ey, ez, ew int) {
				x, y, z := v.local(ex, ey, ez)
				if !v.in(x, y, z) {
					return
				}
				if props.IsTransparent(ew) || props.IsPlant(ew) {
					return
				}
				v.opaque[v.idx(x, y, z)] = true
				if c := v.col(x, z); y > v.highest[c] {
					v.highest[c] = y
				}
			})
		}
	}

	if opts.ShowLights && hasLights(nb) {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				nb.Lights[a][b].Each(func(ex, ey, ez, ew int) {
					x, y, z := v.local(ex, ey, ez)
					v.lightFill(x, y, z, ew)
				})
			}
		}
	}

	res := Result{MinY: opts.Height, MaxY: 0}
	var blocks []exposed
	nb.Blocks[1][1].Each(func(ex, ey, ez, ew int) {
		if ew <= 0 {
			return
		}
		x, y, z := v.local(ex, ey, ez)
		if x < 1 || y < 1 || z < 1 || x >= v.xz-1 || y >= v.ySize-1 || z >= v.xz-1 {
			return
		}
		e := exposed{x: x, y: y, z: z, ex: ex, ey: ey, ez: ez, w: ew}
		e.faces = [6]bool{
			!v.opaqueAt(x-1, y, z),
			!v.opaqueAt(x+1, y, z),
			!v.opaqueAt(x, y+1, z),
			!v.opaqueAt(x, y-1, z) && ey > 0,
			!v.opaqueAt(x, y, z-1),
			!v.opaqueAt(x, y, z+1),
		}
		for _, f := range e.faces {
			if f {
				e.total++
			}
		}
		if e.total == 0 {
			return
		}
		if props.IsPlant(ew) {
			e.total = 4
		}
		res.MinY = min(res.MinY, ey)
		res.MaxY = max(res.MaxY, ey)
		res.Faces += e.total
		blocks = append(blocks, e)
	})

	field := opts.Noise
	if field == nil {
		field = noise.Default()
	}
	data := make([]float32, 0, res.Faces*FloatsPerFace)
	for _, e := range blocks {
		s := v.sample(e.x, e.y, e.z)
		ao, light := occlusion(&s, opts)
		if props.IsPlant(e.w) {
			minAO, maxLight := float32(1), float32(0)
			for i := 0; i < 6; i++ {
				for j := 0; j < 4; j++ {
					minAO = min(minAO, ao[i][j])
					maxLight = max(maxLight, light[i][j])
				}
			}
			pn := opts.PlantNoise
			rotation := float32(field.Octave2(float64(e.ex), float64(e.ez), pn.Octaves, pn.Persistence, pn.Lacunarity)) * 360
			data = appendPlant(data, minAO, maxLight, float32(e.ex), float32(e.ey), float32(e.ez), 0.5, props.PlantTile(e.w), rotation)
			continue
		}
		data = appendCube(data, &ao, &light, e.faces, props.Tiles(e.w), float32(e.ex), float32(e.ey), float32(e.ez), 0.5)
	}
	res.Data = data
	res.Digest = digest(data)
	return res
}

func hasLights(nb *Neighborhood) bool {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if nb.Lights[a][b].Len() > 0 {
				return true
			}
		}
	}
	return false
}

func digest(data []float32) uint64 {
	d := xxhash.New()
	var buf [4]byte
	for _, f := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
