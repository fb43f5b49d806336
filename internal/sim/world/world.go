package world

import (
	"context"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world/feature/movement"
	"voxelcraft.ai/voxelclient/internal/sim/world/feature/workers"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mesh"
)

// World is the client-side chunk registry around the local player.
// All state must be accessed only from the frame loop goroutine; workers only ever
// see private copies.
type World struct {
	cfg    WorldConfig
	tune   tuning.Tuning
	blocks *catalogs.BlockCatalog
	logger *log.Logger

	store Store
	net   Network
	gen   Generator
	audit AuditLogger

	chunks []*Chunk
	index  map[ChunkKey]int

	pool     *workers.Pool
	meshOpts mesh.Options
	move     movement.Params

	// players[0] is the local player.
	players []*Player
	// Observed player ids; a missing id falls back to the local player.
	observe [2]int

	inbox chan RemoteUpdate
	// epoch changes when the registry is replaced wholesale.
	epoch uint64

	frame        uint64
	clock        float64
	lastCommit   float64
	lastPosition float64
	lastBreak    float64
	lastPlace    float64
}

// New validates cfg and starts the worker pool. Close stops it.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	w := &World{
		cfg:      cfg,
		tune:     cfg.Tuning,
		blocks:   cfg.Blocks,
		logger:   cfg.Logger,
		store:    cfg.Store,
		net:      cfg.Network,
		gen:      cfg.Generator,
		audit:    cfg.Audit,
		index:    map[ChunkKey]int{},
		meshOpts: mesh.OptionsFrom(cfg.Tuning),
		move:     movement.ParamsFrom(cfg.Tuning),
		players:  []*Player{{Name: "local"}},
		observe:  [2]int{-1, -1},
		inbox:    make(chan RemoteUpdate, cfg.InboxSize),
	}
	w.pool = workers.New(workers.Config{
		Count:        cfg.Tuning.Workers,
		Loader:       chunkLoader{gen: cfg.Generator, store: cfg.Store},
		Props:        cfg.Blocks,
		Mesh:         w.meshOpts,
		Logger:       cfg.Logger,
		OnTransition: cfg.OnWorkerTransition,
	})
	return w, nil
}

// Close stops the workers, saves the local player and commits the store.
func (w *World) Close() {
	w.pool.Stop()
	w.CheckWorkers()
	a := &w.LocalPlayer().Actor
	w.store.SaveState(a.Pos[0], a.Pos[1], a.Pos[2], a.RX, a.RY)
	w.store.Commit()
}

func (w *World) ID() string { return w.cfg.ID }

func (w *World) Tuning() tuning.Tuning { return w.tune }

func (w *World) Blocks() *catalogs.BlockCatalog { return w.blocks }

func (w *World) Frame() uint64 { return w.frame }

// Enqueue hands an inbound update to the frame loop. It blocks while the inbox is
// full.
func (w *World) Enqueue(ctx context.Context, u RemoteUpdate) error {
	select {
	case w.inbox <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Spawn restores the saved player position, builds the chunks around it and, for a
// fresh world, drops the player on top of the terrain.
func (w *World) Spawn() {
	pl := w.LocalPlayer()
	x, y, z, rx, ry, ok := w.store.LoadState()
	if ok {
		pl.Actor.Pos = mgl32.Vec3{x, y, z}
		pl.Actor.RX, pl.Actor.RY = rx, ry
	}
	w.ForceChunks(pl)
	if !ok {
		pl.Actor.Pos[1] = float32(w.HighestBlock(pl.Actor.Pos[0], pl.Actor.Pos[2]) + 2)
	}
}
