package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/collision"
)

type Env interface {
	collision.World
	// HighestBlock is the top obstacle y of the column holding (x, z), or -1.
	HighestBlock(x, z float32) int
}

type Actor struct {
	Pos mgl32.Vec3
	Vel mgl32.Vec3
	// Yaw and pitch in radians.
	RX, RY float32

	Flying   bool
	Grounded bool
	LastJump float64

	TakenDamage int
}

type Input struct {
	SX, SZ int
	Jump   bool
	Crouch bool
	// Now is the clock used for the jump cooldown, in seconds.
	Now float64
}

type StepResult struct {
	Collided bool
	Damage   int
}

func (p Params) extent() mgl32.Vec3 {
	return mgl32.Vec3{p.Player.Width, p.Player.Height, p.Player.Width}
}

// Step advances a by dt seconds of input, physics and collision.
func Step(env Env, a *Actor, in Input, dt float32, p Params) StepResult {
	acc := MotionVector(a.Flying, in.SZ, in.SX, a.RX, a.RY)
	acc[1] = verticalAccel(a, in, p.Physics)
	AddVelocity(&a.Vel, acc, dt, a.Flying, p.Physics)
	ConstrainVelocity(&a.Vel, dt, a.Flying, a.Grounded, p.Physics)
	res := Collide(env, a, dt, p)
	if a.Pos[1] < 0 {
		a.Vel[1] = 0
		a.Pos[1] = float32(env.HighestBlock(a.Pos[0], a.Pos[2])) + p.Player.Height
	}
	return res
}

func verticalAccel(a *Actor, in Input, ph tuning.Physics) float32 {
	if a.Flying {
		switch {
		case in.Jump && !in.Crouch:
			return ph.FlySpeed
		case in.Crouch && !in.Jump:
			return -ph.FlySpeed
		}
		return 0
	}
	if !in.Jump || !a.Grounded || !(in.Now-a.LastJump > float64(ph.JumpCooldown)) {
		return 0
	}
	a.LastJump = in.Now
	a.Grounded = false
	return ph.JumpAccel
}

// AddVelocity applies input acceleration. Horizontal input is scaled by the walk or
// fly speed; vertical acceleration is used as is.
func AddVelocity(v *mgl32.Vec3, acc mgl32.Vec3, dt float32, flying bool, ph tuning.Physics) {
	speed := ph.WalkSpeed
	if flying {
		speed = ph.FlySpeed
	}
	v[0] += acc[0] * speed * dt
	v[2] += acc[2] * speed * dt
	v[1] += acc[1] * dt
}

// ConstrainVelocity applies gravity and drag, snaps tiny velocities to zero and caps
// the vertical speed.
func ConstrainVelocity(v *mgl32.Vec3, dt float32, flying, grounded bool, ph tuning.Physics) {
	if !flying {
		v[1] -= ph.Gravity * dt
	}
	if v.Dot(*v) <= ph.MinVelocitySq {
		*v = mgl32.Vec3{}
	}
	if flying {
		r := ph.FlyResistance * dt
		*v = v.Sub(v.Mul(r))
	} else {
		rh := ph.AirHResistance
		if grounded {
			rh = ph.GroundResistance
		}
		rh *= dt
		v[0] -= v[0] * rh
		v[1] -= v[1] * ph.AirVResistance * dt
		v[2] -= v[2] * rh
	}
	if lim := ph.MaxFallSpeed; v[1] > lim {
		v[1] = lim
	} else if v[1] < -lim {
		v[1] = -lim
	}
}

// ImpulseDamage converts a velocity change applied over one frame into damage.
func ImpulseDamage(impulse float32, ph tuning.Physics) int {
	if impulse < ph.MinImpulseDamage {
		return 0
	}
	return int(math.Round(float64(ph.ImpulseDamageMin + ph.ImpulseDamageScale*impulse)))
}

// Collide moves a by its velocity for dt. When anything is hit during the frame the
// move is split into substeps: each stops at the impact, backs off by the pad, drops
// the velocity along the normal and slides with what is left of the substep.
func Collide(env Env, a *Actor, dt float32, p Params) StepResult {
	ext := p.extent()
	a.Grounded = false
	t, _ := collision.SweepWorld(env, collision.Box{Center: a.Pos, Extent: ext}, a.Vel.Mul(dt))
	if !(t >= 0 && t < 1) {
		a.Pos = a.Pos.Add(a.Vel.Mul(dt))
		return StepResult{}
	}

	steps := max(p.Collision.Substeps, 1)
	ut := dt / float32(steps)
	v0 := a.Vel
	pos := a.Pos
	for i := 0; i < steps; i++ {
		left := float32(1)
		// At most one stop per axis.
		for k := 0; k < 3 && left > 0; k++ {
			d := a.Vel.Mul(ut * left)
			st, n := collision.SweepWorld(env, collision.Box{Center: pos, Extent: ext}, d)
			pos = pos.Add(d.Mul(st))
			if st >= 1 {
				break
			}
			axis := normalAxis(n)
			if axis < 0 {
				break
			}
			pos[axis] += n[axis] * p.Collision.Pad
			a.Vel[axis] = 0
			if n[1] > 0 {
				a.Grounded = true
			}
			left *= 1 - st
		}
	}
	a.Pos = pos

	dmg := ImpulseDamage(a.Vel.Sub(v0).Len()*dt, p.Physics)
	a.TakenDamage += dmg
	return StepResult{Collided: true, Damage: dmg}
}

func normalAxis(n mgl32.Vec3) int {
	for i := 0; i < 3; i++ {
		if n[i] != 0 {
			return i
		}
	}
	return -1
}
