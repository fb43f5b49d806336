package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed defaults/blocks.json
var defaultBlocksJSON []byte

//go:embed defaults/blocks.schema.json
var blocksSchemaJSON string

// Empty is the reserved id for air.
const Empty = 0

type BlockCatalog struct {
	Defs       []BlockDef // indexed by id
	Index      map[string]int
	Items      []int // buildable ids, in id order
	DefsDigest string
}

type BlockDef struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Tiles           [6]int `json:"tiles"` // left, right, top, bottom, front, back
	Plant           bool   `json:"plant,omitempty"`
	PlantTile       int    `json:"plant_tile,omitempty"`
	Obstacle        bool   `json:"obstacle"`
	Transparent     bool   `json:"transparent"`
	Destructable    bool   `json:"destructable"`
	MaxDamage       int    `json:"max_damage"`
	MinDamageChange int    `json:"min_damage_change"`
	Buildable       bool   `json:"buildable,omitempty"`
}

// Load reads <configDir>/blocks.json.
func Load(configDir string) (*BlockCatalog, error) {
	path := filepath.Join(configDir, "blocks.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Default returns the built-in block table.
func Default() *BlockCatalog {
	c, err := Parse(defaultBlocksJSON)
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded blocks.json: %v", err))
	}
	return c
}

func Parse(raw []byte) (*BlockCatalog, error) {
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}

	c := &BlockCatalog{
		Defs:       make([]BlockDef, len(defs)),
		Index:      make(map[string]int, len(defs)),
		DefsDigest: sha256Hex(raw),
	}
	seen := make([]bool, len(defs))
	for _, d := range defs {
		if d.ID >= len(defs) {
			return nil, fmt.Errorf("blocks.json: id %d leaves a gap (have %d defs)", d.ID, len(defs))
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("blocks.json: duplicate id %d", d.ID)
		}
		if _, dup := c.Index[d.Name]; dup {
			return nil, fmt.Errorf("blocks.json: duplicate name %s", d.Name)
		}
		if d.Plant && d.Obstacle {
			return nil, fmt.Errorf("blocks.json: plant %s cannot be an obstacle", d.Name)
		}
		seen[d.ID] = true
		c.Defs[d.ID] = d
		c.Index[d.Name] = d.ID
	}

	// Ensure EMPTY exists and is id 0.
	e := c.Defs[Empty]
	if e.Name != "EMPTY" || e.Obstacle || !e.Transparent {
		return nil, fmt.Errorf("blocks.json: id 0 must be a transparent, non-obstacle EMPTY")
	}
	for _, d := range c.Defs {
		if d.Buildable && d.ID != Empty {
			c.Items = append(c.Items, d.ID)
		}
	}
	return c, nil
}

func validate(raw []byte) error {
	s, err := jsonschema.CompileString("blocks.schema.json", blocksSchemaJSON)
	if err != nil {
		return err
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Def returns the definition for |w|. An id outside the table is a data bug and panics.
func (c *BlockCatalog) Def(w int) *BlockDef {
	if w < 0 {
		w = -w
	}
	if w >= len(c.Defs) {
		panic(fmt.Sprintf("catalogs: invalid block id %d", w))
	}
	return &c.Defs[w]
}

func (c *BlockCatalog) Len() int { return len(c.Defs) }

func (c *BlockCatalog) IsPlant(w int) bool { return c.Def(w).Plant }

func (c *BlockCatalog) IsObstacle(w int) bool { return c.Def(w).Obstacle }

func (c *BlockCatalog) IsTransparent(w int) bool { return c.Def(w).Transparent }

func (c *BlockCatalog) IsDestructable(w int) bool { return c.Def(w).Destructable }

func (c *BlockCatalog) MaxDamage(w int) int { return c.Def(w).MaxDamage }

func (c *BlockCatalog) MinDamageChange(w int) int { return c.Def(w).MinDamageChange }

func (c *BlockCatalog) Tiles(w int) [6]int { return c.Def(w).Tiles }

func (c *BlockCatalog) PlantTile(w int) int { return c.Def(w).PlantTile }

// ID looks a block up by name.
func (c *BlockCatalog) ID(name string) (int, bool) {
	id, ok := c.Index[name]
	return id, ok
}
