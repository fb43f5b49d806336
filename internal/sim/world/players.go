package world

import "github.com/go-gl/mathgl/mgl32"

func (w *World) LocalPlayer() *Player { return w.players[0] }

// Players returns every known player, the local one first.
func (w *World) Players() []*Player { return w.players }

func (w *World) FindPlayer(id int) *Player {
	for _, pl := range w.players[1:] {
		if pl.ID == id {
			return pl
		}
	}
	return nil
}

// UpsertPlayer moves a remote player, adding it when unknown. It reports false when
// the player table is full.
func (w *World) UpsertPlayer(id int, name string, pos mgl32.Vec3, rx, ry float32) bool {
	pl := w.FindPlayer(id)
	if pl == nil {
		if len(w.players) >= w.tune.MaxPlayers {
			return false
		}
		pl = &Player{ID: id, Name: name}
		w.players = append(w.players, pl)
	}
	if name != "" {
		pl.Name = name
	}
	pl.Actor.Pos = pos
	pl.Actor.RX, pl.Actor.RY = rx, ry
	return true
}

// RemovePlayer forgets a remote player; the last player takes its slot.
func (w *World) RemovePlayer(id int) bool {
	for i := 1; i < len(w.players); i++ {
		if w.players[i].ID != id {
			continue
		}
		last := len(w.players) - 1
		w.players[i] = w.players[last]
		w.players[last] = nil
		w.players = w.players[:last]
		return true
	}
	return false
}

// Observe points an observe slot (0 or 1) at a remote player. Chunks near observed
// players are kept loaded. A negative id clears the slot.
func (w *World) Observe(slot, id int) {
	if slot < 0 || slot >= len(w.observe) {
		return
	}
	w.observe[slot] = id
}

func (w *World) observedPlayers() [3]*Player {
	out := [3]*Player{w.LocalPlayer(), w.LocalPlayer(), w.LocalPlayer()}
	for i, id := range w.observe {
		if id < 0 {
			continue
		}
		if pl := w.FindPlayer(id); pl != nil {
			out[i+1] = pl
		}
	}
	return out
}
