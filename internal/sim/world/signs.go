package world

import "voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"

// SignFaces counts the faces a sign can sit on: four sides and four top rotations.
const SignFaces = 8

// SetSign is a local edit. Empty text removes the sign from that face.
func (w *World) SetSign(x, y, z, face int, text string) {
	if face < 0 || face >= SignFaces {
		return
	}
	if len(text) > store.MaxSignText {
		text = text[:store.MaxSignText]
	}
	w.setSignIn(w.chunkedInt(x), w.chunkedInt(z), x, y, z, face, text, true)
	w.net.SendSign(x, y, z, face, text)
}

func (w *World) setSignIn(p, q, x, y, z, face int, text string, dirty bool) {
	if text == "" {
		w.UnsetSignFace(x, y, z, face)
		return
	}
	if c := w.FindChunk(p, q); c != nil {
		c.Signs.Add(store.Sign{X: x, Y: y, Z: z, Face: face, Text: text})
		if dirty {
			c.Dirty = true
		}
	}
	w.store.InsertSign(p, q, x, y, z, face, text)
}

// UnsetSign removes every sign on the block.
func (w *World) UnsetSign(x, y, z int) {
	c := w.findChunkXZ(x, z)
	if c == nil {
		w.store.DeleteSigns(x, y, z)
		return
	}
	if c.Signs.RemoveAll(x, y, z) > 0 {
		c.Dirty = true
		w.store.DeleteSigns(x, y, z)
	}
}

func (w *World) UnsetSignFace(x, y, z, face int) {
	c := w.findChunkXZ(x, z)
	if c == nil {
		w.store.DeleteSign(x, y, z, face)
		return
	}
	if c.Signs.Remove(x, y, z, face) > 0 {
		c.Dirty = true
		w.store.DeleteSign(x, y, z, face)
	}
}
