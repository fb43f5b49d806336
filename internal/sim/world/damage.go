package world

func (w *World) GetBlockDamage(x, y, z int) int {
	c := w.findChunkXZ(x, z)
	if c == nil {
		return 0
	}
	return c.Damage.Get(x, y, z)
}

// SetBlockDamage records accumulated damage. It reports false when the chunk is not
// loaded.
func (w *World) SetBlockDamage(x, y, z, d int) bool {
	c := w.findChunkXZ(x, z)
	if c == nil {
		return false
	}
	c.Damage.Set(x, y, z, d)
	w.store.InsertDamage(c.P, c.Q, x, y, z, d)
	return true
}

// AddBlockDamage adds d to the block's damage and reports whether the block should be
// destroyed. Hits below the block's threshold leave it untouched.
func (w *World) AddBlockDamage(x, y, z, d int) bool {
	c := w.findChunkXZ(x, z)
	if c == nil {
		return false
	}
	v := c.Blocks.Get(x, y, z)
	if d < w.blocks.MinDamageChange(v) {
		return false
	}
	total := c.Damage.Get(x, y, z) + d
	w.SetBlockDamage(x, y, z, total)
	return total >= w.blocks.MaxDamage(v)
}
