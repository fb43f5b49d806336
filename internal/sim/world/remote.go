package world

import "voxelcraft.ai/voxelclient/internal/sim/world/logic/collision"

// ApplyRemote applies one server update through the same entry points as local edits
// but without echoing anything back to the server.
func (w *World) ApplyRemote(u RemoteUpdate) {
	switch u.Kind {
	case UpdateBlock:
		if !w.validBlock(u.W) {
			w.logger.Printf("remote block %d at (%d,%d,%d): unknown id", u.W, u.X, u.Y, u.Z)
			return
		}
		w.setBlockIn(u.P, u.Q, u.X, u.Y, u.Z, u.W, false)
		pl := w.LocalPlayer()
		if collision.IntersectBlock(w.playerBox(pl), u.X, u.Y, u.Z) {
			pl.Actor.Pos[1] = float32(w.HighestBlock(pl.Actor.Pos[0], pl.Actor.Pos[2]) + 2)
		}
	case UpdateLight:
		if u.W < 0 || u.W > w.tune.Lighting.MaxLight {
			return
		}
		w.SetLight(u.P, u.Q, u.X, u.Y, u.Z, u.W)
	case UpdateSign:
		if u.Face < 0 || u.Face >= SignFaces {
			return
		}
		w.setSignIn(u.P, u.Q, u.X, u.Y, u.Z, u.Face, u.Text, false)
	case UpdateKey:
		w.store.SetKey(u.P, u.Q, u.Key)
	case UpdateRedraw:
		if c := w.FindChunk(u.P, u.Q); c != nil {
			w.MarkDirty(c)
		}
	case UpdatePlayer:
		if !w.UpsertPlayer(u.PlayerID, u.Name, u.Pos, u.RX, u.RY) {
			w.logger.Printf("player table full, dropping player %d", u.PlayerID)
		}
	case UpdateLeave:
		w.RemovePlayer(u.PlayerID)
	case UpdateYou:
		pl := w.LocalPlayer()
		pl.ID = u.PlayerID
		if u.Name != "" {
			pl.Name = u.Name
		}
		pl.Actor.Pos = u.Pos
		pl.Actor.RX, pl.Actor.RY = u.RX, u.RY
		w.ForceChunks(pl)
		if u.Pos[1] == 0 {
			pl.Actor.Pos[1] = float32(w.HighestBlock(pl.Actor.Pos[0], pl.Actor.Pos[2]) + 2)
		}
	default:
		w.logger.Printf("remote update: unknown kind %d", u.Kind)
	}
}
