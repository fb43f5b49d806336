package world

import (
	"context"
	"time"

	"voxelcraft.ai/voxelclient/internal/sim/world/feature/movement"
)

// Run spawns the local player and drives frames at the configured rate until ctx is
// done. Remote updates are applied between frames.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tune.Frame.RateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.Spawn()
	last := w.cfg.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-w.inbox:
			w.ApplyRemote(u)
		case <-ticker.C:
			now := w.cfg.Now()
			w.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Step advances one frame of dt seconds, clamped to [0, MaxDT].
func (w *World) Step(dt float64) {
	dt = min(max(dt, 0), w.tune.Frame.MaxDT)
	w.frame++
	w.clock += dt
	pl := w.LocalPlayer()

	var in Controls
	if w.cfg.Input != nil {
		in = w.cfg.Input()
	}
	in.Move.Now = w.clock
	// Collide records landing damage on the actor.
	movement.Step(w, &pl.Actor, in.Move, float32(dt), w.move)
	if in.Break && w.clock-w.lastBreak > float64(w.tune.Physics.BreakCooldown) {
		w.lastBreak = w.clock
		w.BreakBlock()
	}
	if in.Place && w.clock-w.lastPlace > float64(w.tune.Physics.BlockCooldown) {
		if w.PlaceBlock(in.Item) {
			w.lastPlace = w.clock
		}
	}

	if w.clock-w.lastCommit >= w.tune.Frame.CommitIntervalS {
		w.lastCommit = w.clock
		w.store.Commit()
	}
	if w.clock-w.lastPosition >= w.tune.Frame.PositionInterval {
		w.lastPosition = w.clock
		a := &pl.Actor
		w.net.SendPosition(a.Pos[0], a.Pos[1], a.Pos[2], a.RX, a.RY)
	}

	w.DeleteChunks()
	w.EnsureChunks(pl)
}
