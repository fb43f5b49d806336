package world

func (w *World) GetLight(x, y, z int) int {
	c := w.findChunkXZ(x, z)
	if c == nil {
		return 0
	}
	return c.Lights.Get(x, y, z)
}

// SetLight stores a light level for chunk (p, q). A change dirties the neighborhood
// and is persisted; edits for chunks that are not loaded go straight to the store.
func (w *World) SetLight(p, q, x, y, z, v int) {
	c := w.FindChunk(p, q)
	if c == nil {
		w.store.InsertLight(p, q, x, y, z, v)
		return
	}
	if c.Lights.Set(x, y, z, v) {
		w.MarkDirty(c)
		w.store.InsertLight(p, q, x, y, z, v)
	}
}

// ToggleLight switches the cell between dark and full brightness. It is a local
// edit and is sent to the server.
func (w *World) ToggleLight(x, y, z int) {
	p, q := w.chunkedInt(x), w.chunkedInt(z)
	c := w.FindChunk(p, q)
	if c == nil {
		return
	}
	v := w.tune.Lighting.MaxLight
	if c.Lights.Get(x, y, z) != 0 {
		v = 0
	}
	c.Lights.Set(x, y, z, v)
	w.store.InsertLight(p, q, x, y, z, v)
	w.net.SendLight(x, y, z, v)
	w.MarkDirty(c)
}
