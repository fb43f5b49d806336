package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ChunkSize   int `yaml:"chunk_size"`
	WorldHeight int `yaml:"world_height"`
	Workers     int `yaml:"workers"`
	MaxChunks   int `yaml:"max_chunks"`
	MaxPlayers  int `yaml:"max_players"`

	Radius    Radius    `yaml:"radius"`
	Lighting  Lighting  `yaml:"lighting"`
	Mesh      Mesh      `yaml:"mesh"`
	Physics   Physics   `yaml:"physics"`
	Collision Collision `yaml:"collision"`
	Player    Player    `yaml:"player"`
	Camera    Camera    `yaml:"camera"`
	Frame     Frame     `yaml:"frame"`
	Store     Store     `yaml:"store"`
}

// Radius values are in chunks.
type Radius struct {
	Create int `yaml:"create"`
	Render int `yaml:"render"`
	Delete int `yaml:"delete"`
	Sign   int `yaml:"sign"`
	Force  int `yaml:"force"`
}

type Lighting struct {
	ShowLights bool `yaml:"show_lights"`
	MaxLight   int  `yaml:"max_light"`
}

type Mesh struct {
	ShadeSteps   int        `yaml:"shade_steps"`
	ShadeFalloff float32    `yaml:"shade_falloff"`
	AOCurve      [4]float32 `yaml:"ao_curve"`
	PlantNoise   Noise      `yaml:"plant_noise"`
}

type Noise struct {
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

type Physics struct {
	FlyResistance      float32 `yaml:"fly_resistance"`
	AirHResistance     float32 `yaml:"air_h_resistance"`
	AirVResistance     float32 `yaml:"air_v_resistance"`
	GroundResistance   float32 `yaml:"ground_resistance"`
	FlySpeed           float32 `yaml:"fly_speed"`
	WalkSpeed          float32 `yaml:"walk_speed"`
	Gravity            float32 `yaml:"gravity"`
	JumpAccel          float32 `yaml:"jump_accel"`
	JumpCooldown       float32 `yaml:"jump_cooldown"`
	BlockCooldown      float32 `yaml:"block_cooldown"`
	BreakCooldown      float32 `yaml:"break_cooldown"`
	MaxFallSpeed       float32 `yaml:"max_fall_speed"`
	MinVelocitySq      float32 `yaml:"min_velocity_sq"`
	MinImpulseDamage   float32 `yaml:"min_impulse_damage"`
	ImpulseDamageMin   float32 `yaml:"impulse_damage_min"`
	ImpulseDamageScale float32 `yaml:"impulse_damage_scale"`
}

type Collision struct {
	Substeps int     `yaml:"substeps"`
	Pad      float32 `yaml:"pad"`
}

// Player extents are half sizes.
type Player struct {
	Width        float32 `yaml:"width"`
	Height       float32 `yaml:"height"`
	EyeHeight    float32 `yaml:"eye_height"`
	Reach        float32 `yaml:"reach"`
	AttackDamage int     `yaml:"attack_damage"`
}

type Camera struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FOV    float32 `yaml:"fov"`
	Ortho  float32 `yaml:"ortho"`
	ZNear  float32 `yaml:"z_near"`
}

type Frame struct {
	RateHz           int     `yaml:"rate_hz"`
	MaxDT            float64 `yaml:"max_dt"`
	CommitIntervalS  float64 `yaml:"commit_interval_s"`
	PositionInterval float64 `yaml:"position_interval_s"`
}

type Store struct {
	QueueSize      int     `yaml:"queue_size"`
	CommitEvery    int     `yaml:"commit_every"`
	CommitMaxWaitS float64 `yaml:"commit_max_wait_s"`
	DamageTTLS     int64   `yaml:"damage_ttl_s"`
}

func Defaults() Tuning {
	return Tuning{
		ChunkSize:   32,
		WorldHeight: 256,
		Workers:     4,
		MaxChunks:   8192,
		MaxPlayers:  128,
		Radius: Radius{
			Create: 10,
			Render: 10,
			Delete: 14,
			Sign:   4,
			Force:  1,
		},
		Lighting: Lighting{ShowLights: true, MaxLight: 15},
		Mesh: Mesh{
			ShadeSteps:   8,
			ShadeFalloff: 0.125,
			AOCurve:      [4]float32{0, 0.25, 0.5, 0.75},
			PlantNoise:   Noise{Octaves: 4, Persistence: 0.5, Lacunarity: 2},
		},
		Physics: Physics{
			FlyResistance:      3.0,
			AirHResistance:     8.0,
			AirVResistance:     0.1,
			GroundResistance:   8.1,
			FlySpeed:           90.0,
			WalkSpeed:          80.0,
			Gravity:            60.0,
			JumpAccel:          800.0,
			JumpCooldown:       0.51,
			BlockCooldown:      0.1,
			BreakCooldown:      0.05,
			MaxFallSpeed:       150,
			MinVelocitySq:      0.01,
			MinImpulseDamage:   0.40,
			ImpulseDamageMin:   10.0,
			ImpulseDamageScale: 380.0,
		},
		Collision: Collision{Substeps: 4, Pad: 0.001},
		Player: Player{
			Width:        0.4,
			Height:       1.2,
			EyeHeight:    0.5,
			Reach:        8,
			AttackDamage: 1,
		},
		Camera: Camera{Width: 1024, Height: 768, FOV: 65, ZNear: 0.125},
		Frame: Frame{
			RateHz:           60,
			MaxDT:            0.2,
			CommitIntervalS:  5,
			PositionInterval: 0.1,
		},
		Store: Store{
			QueueSize:      65536,
			CommitEvery:    2000,
			CommitMaxWaitS: 2,
			DamageTTLS:     300,
		},
	}
}

// Load overlays the YAML file at path onto Defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.ChunkSize < 2:
		return fmt.Errorf("chunk_size must be >= 2, got %d", t.ChunkSize)
	case t.ChunkSize > 1000:
		return fmt.Errorf("chunk_size must be <= 1000, got %d", t.ChunkSize)
	case t.WorldHeight < 2 || t.WorldHeight > 1024:
		return fmt.Errorf("world_height must be in [2, 1024], got %d", t.WorldHeight)
	case t.Workers < 1:
		return fmt.Errorf("workers must be >= 1, got %d", t.Workers)
	case t.MaxChunks < 9:
		return fmt.Errorf("max_chunks must be >= 9, got %d", t.MaxChunks)
	case t.MaxPlayers < 1:
		return fmt.Errorf("max_players must be >= 1, got %d", t.MaxPlayers)
	case t.Radius.Create < 0 || t.Radius.Render < 0 || t.Radius.Force < 0:
		return fmt.Errorf("radius values must be >= 0")
	case t.Radius.Delete <= t.Radius.Create:
		return fmt.Errorf("radius.delete (%d) must exceed radius.create (%d)", t.Radius.Delete, t.Radius.Create)
	case t.Lighting.MaxLight < 1 || t.Lighting.MaxLight >= t.ChunkSize:
		return fmt.Errorf("lighting.max_light must be in [1, chunk_size), got %d", t.Lighting.MaxLight)
	case t.Mesh.ShadeSteps < 0:
		return fmt.Errorf("mesh.shade_steps must be >= 0")
	case t.Collision.Substeps < 1:
		return fmt.Errorf("collision.substeps must be >= 1, got %d", t.Collision.Substeps)
	case t.Frame.RateHz < 1:
		return fmt.Errorf("frame.rate_hz must be >= 1, got %d", t.Frame.RateHz)
	}
	return nil
}
