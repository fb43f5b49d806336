package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/world/feature/movement"
)

func TestStep_CommitsAndSendsPosition(t *testing.T) {
	tu := testTuning()
	tu.Radius.Create = 1
	tu.Radius.Render = 1
	tu.Radius.Delete = 3
	st := newMemStore()
	net := &recordingNetwork{}
	w := newTestWorld(t, tu, st, net)

	for i := 0; i < 50; i++ {
		w.Step(0.125)
	}
	if w.Frame() != 50 {
		t.Fatalf("frame: %d", w.Frame())
	}
	st.mu.Lock()
	commits := st.commits
	st.mu.Unlock()
	if commits != 1 {
		t.Fatalf("commits: got %d want 1", commits)
	}
	if net.positions != 50 {
		t.Fatalf("positions: got %d want 50", net.positions)
	}
	if w.FindChunk(0, 0) == nil {
		t.Fatalf("chunks around the player not created")
	}
}

func TestStep_ClampsDT(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	w.Step(10)
	if w.clock != w.tune.Frame.MaxDT {
		t.Fatalf("clock after long frame: %v", w.clock)
	}
	w.Step(-1)
	if w.clock != w.tune.Frame.MaxDT || w.Frame() != 2 {
		t.Fatalf("negative dt advanced the clock: %v frame %d", w.clock, w.Frame())
	}
}

func TestStep_LandingDamageCountedOnce(t *testing.T) {
	w := newTestWorld(t, testTuning(), nil, nil)
	mustChunk(t, w, 0, 0)
	stone := blockID(t, "STONE")
	for x := 5; x <= 11; x++ {
		for z := 5; z <= 11; z++ {
			w.SetBlock(x, 5, z, stone)
		}
	}
	pl := w.LocalPlayer()
	pl.Actor.Pos = mgl32.Vec3{8, 8, 8}
	pl.Actor.Vel = mgl32.Vec3{0, -100, 0}
	pl.Actor.TakenDamage = 0

	const dt = 0.05
	alone := pl.Actor
	res := movement.Step(w, &alone, movement.Input{Now: dt}, dt, w.move)
	if !res.Collided || res.Damage <= 0 {
		t.Fatalf("expected a damaging landing, got %+v", res)
	}
	if alone.TakenDamage != res.Damage {
		t.Fatalf("movement.Step damage %d, actor recorded %d", res.Damage, alone.TakenDamage)
	}

	w.Step(dt)
	if pl.Actor.TakenDamage != res.Damage {
		t.Fatalf("frame damage: got %d want %d", pl.Actor.TakenDamage, res.Damage)
	}
	if !pl.Actor.Grounded {
		t.Fatalf("player not grounded after landing")
	}
}
