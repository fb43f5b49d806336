package gen

import (
	"fmt"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/noise"
)

// Palette holds the block ids the generator places.
type Palette struct {
	Grass, Sand, Wood, Leaves, Cloud, TallGrass int
	Flowers                                     []int
}

var flowerNames = []string{
	"YELLOW_FLOWER", "RED_FLOWER", "PURPLE_FLOWER", "SUN_FLOWER", "WHITE_FLOWER", "BLUE_FLOWER",
}

// PaletteFrom resolves the generator blocks by name.
func PaletteFrom(c *catalogs.BlockCatalog) (Palette, error) {
	var p Palette
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"GRASS", &p.Grass},
		{"SAND", &p.Sand},
		{"WOOD", &p.Wood},
		{"LEAVES", &p.Leaves},
		{"CLOUD", &p.Cloud},
		{"TALL_GRASS", &p.TallGrass},
	} {
		id, ok := c.ID(f.name)
		if !ok {
			return Palette{}, fmt.Errorf("gen: block catalog has no %s", f.name)
		}
		*f.dst = id
	}
	for _, name := range flowerNames {
		id, ok := c.ID(name)
		if !ok {
			return Palette{}, fmt.Errorf("gen: block catalog has no %s", name)
		}
		p.Flowers = append(p.Flowers, id)
	}
	return p, nil
}

// Generator produces the terrain of a chunk from the world seed alone.
// Columns in the one-block border are emitted with negated ids.
type Generator struct {
	ChunkSize int
	Height    int
	Palette   Palette

	// Heights below WaterLevel are flattened to sand.
	WaterLevel int
	CloudMin   int
	CloudMax   int

	field *noise.Field
}

func New(seed int64, chunkSize, height int, palette Palette) *Generator {
	return &Generator{
		ChunkSize:  chunkSize,
		Height:     height,
		Palette:    palette,
		WaterLevel: 12,
		CloudMin:   64,
		CloudMax:   72,
		field:      noise.New(seed),
	}
}

// Generate calls sink for every generated cell of chunk (p, q).
func (g *Generator) Generate(p, q int, sink func(x, y, z, w int)) {
	cs := g.ChunkSize
	for dx := -1; dx <= cs; dx++ {
		for dz := -1; dz <= cs; dz++ {
			flag := 1
			if dx < 0 || dz < 0 || dx >= cs || dz >= cs {
				flag = -1
			}
			g.column(p*cs+dx, q*cs+dz, dx, dz, flag, sink)
		}
	}
}

// ColumnHeight is the terrain surface height at (x, z), before decorations.
func (g *Generator) ColumnHeight(x, z int) (h int, sand bool) {
	fx, fz := float64(x), float64(z)
	f := g.field.Octave2(fx*0.01, fz*0.01, 4, 0.5, 2)
	s := g.field.Octave2(-fx*0.01, -fz*0.01, 2, 0.9, 2)
	mh := s*32 + 16
	h = int(f * mh)
	if h <= g.WaterLevel {
		return g.WaterLevel, true
	}
	return h, false
}

func (g *Generator) column(x, z, dx, dz, flag int, sink func(x, y, z, w int)) {
	put := func(x, y, z, w int) {
		if y >= 0 && y < g.Height {
			sink(x, y, z, w)
		}
	}
	h, sand := g.ColumnHeight(x, z)
	w := g.Palette.Grass
	if sand {
		w = g.Palette.Sand
	}
	for y := 0; y < h; y++ {
		put(x, y, z, w*flag)
	}

	fx, fz := float64(x), float64(z)
	if !sand {
		if g.field.Octave2(-fx*0.1, fz*0.1, 4, 0.8, 2) > 0.6 {
			put(x, h, z, g.Palette.TallGrass*flag)
		}
		if g.field.Octave2(fx*0.05, -fz*0.05, 4, 0.8, 2) > 0.7 && len(g.Palette.Flowers) > 0 {
			i := int(g.field.Octave2(fx*0.1, fz*0.1, 4, 0.8, 2) * float64(len(g.Palette.Flowers)))
			i = min(max(i, 0), len(g.Palette.Flowers)-1)
			put(x, h, z, g.Palette.Flowers[i]*flag)
		}
		cs := g.ChunkSize
		roomy := dx-4 >= 0 && dz-4 >= 0 && dx+4 < cs && dz+4 < cs
		if roomy && g.field.Octave2(fx, fz, 6, 0.5, 2) > 0.84 {
			g.tree(x, h, z, put)
		}
	}

	for y := g.CloudMin; y < g.CloudMax; y++ {
		if g.field.Octave3(fx*0.01, float64(y)*0.1, fz*0.01, 8, 0.5, 2) > 0.75 {
			put(x, y, z, g.Palette.Cloud*flag)
		}
	}
}

func (g *Generator) tree(x, h, z int, put func(x, y, z, w int)) {
	for y := h + 3; y < h+8; y++ {
		for ox := -3; ox <= 3; ox++ {
			for oz := -3; oz <= 3; oz++ {
				dy := y - (h + 4)
				if ox*ox+oz*oz+dy*dy < 11 {
					put(x+ox, y, z+oz, g.Palette.Leaves)
				}
			}
		}
	}
	for y := h; y < h+7; y++ {
		put(x, y, z, g.Palette.Wood)
	}
}
