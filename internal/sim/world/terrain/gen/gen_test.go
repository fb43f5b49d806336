package gen

import (
	"reflect"
	"testing"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
)

type cell struct{ x, y, z, w int }

func newTestGen(t *testing.T, seed int64) *Generator {
	t.Helper()
	pal, err := PaletteFrom(catalogs.Default())
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	return New(seed, 16, 128, pal)
}

func collect(g *Generator, p, q int) []cell {
	var out []cell
	g.Generate(p, q, func(x, y, z, w int) { out = append(out, cell{x, y, z, w}) })
	return out
}

func TestGenerate_Deterministic(t *testing.T) {
	a := collect(newTestGen(t, 42), 3, -2)
	b := collect(newTestGen(t, 42), 3, -2)
	if len(a) == 0 {
		t.Fatalf("empty chunk")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different chunks")
	}
}

func TestGenerate_BorderIsShadow(t *testing.T) {
	g := newTestGen(t, 7)
	p, q := -1, 2
	for _, c := range collect(g, p, q) {
		native := c.x >= p*16 && c.x < p*16+16 && c.z >= q*16 && c.z < q*16+16
		if c.x < p*16-1 || c.x > p*16+16 || c.z < q*16-1 || c.z > q*16+16 {
			t.Fatalf("cell outside padded chunk: %+v", c)
		}
		if !native && c.w > 0 {
			t.Fatalf("border cell must be negated: %+v", c)
		}
		if native && c.w < 0 {
			t.Fatalf("native cell negated: %+v", c)
		}
		if c.y < 0 || c.y >= 128 {
			t.Fatalf("cell outside world height: %+v", c)
		}
	}
}

func TestGenerate_NeighborsAgreeOnBorder(t *testing.T) {
	g := newTestGen(t, 1)
	right := map[[3]int]int{}
	for _, c := range collect(g, 1, 0) {
		right[[3]int{c.x, c.y, c.z}] = c.w
	}
	// Column x=16 is native to chunk 1 and border of chunk 0. Only ground is compared;
	// tree canopies are not mirrored into the border.
	for _, c := range collect(g, 0, 0) {
		if c.x != 16 || c.z < 4 || c.z > 11 || c.y >= 12 {
			continue
		}
		if right[[3]int{c.x, c.y, c.z}] != -c.w {
			t.Fatalf("border mismatch at %+v: neighbor has %d", c, right[[3]int{c.x, c.y, c.z}])
		}
	}
}

func TestColumnHeight_SandAtWaterLevel(t *testing.T) {
	g := newTestGen(t, 3)
	for x := -50; x < 50; x += 5 {
		h, sand := g.ColumnHeight(x, x*2)
		if h < g.WaterLevel {
			t.Fatalf("height %d below water level", h)
		}
		if sand && h != g.WaterLevel {
			t.Fatalf("sand column should sit at water level, got %d", h)
		}
	}
}

func TestPaletteFrom_MissingBlock(t *testing.T) {
	c, err := catalogs.Parse([]byte(`[{"id":0,"name":"EMPTY","obstacle":false,"transparent":true,"destructable":false,"max_damage":0,"min_damage_change":1}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := PaletteFrom(c); err == nil {
		t.Fatalf("expected missing block error")
	}
}
