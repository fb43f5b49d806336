package movement

import "voxelcraft.ai/voxelclient/internal/sim/tuning"

type Params struct {
	Physics   tuning.Physics
	Collision tuning.Collision
	Player    tuning.Player
}

func ParamsFrom(t tuning.Tuning) Params {
	return Params{Physics: t.Physics, Collision: t.Collision, Player: t.Player}
}
