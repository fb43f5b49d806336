package world

import (
	"log"
	"time"

	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world/feature/workers"
)

type WorldConfig struct {
	ID     string
	Seed   int64
	Tuning tuning.Tuning
	Blocks *catalogs.BlockCatalog

	// Collaborators. Nil Store and Network fall back to the Nop implementations;
	// a nil Generator leaves new chunks empty apart from stored edits.
	Store     Store
	Network   Network
	Generator Generator
	Audit     AuditLogger
	Logger    *log.Logger

	// Input is polled once per frame for the local player. Nil means no input.
	Input func() Controls
	// Now defaults to time.Now.
	Now func() time.Time
	// InboxSize bounds queued remote updates.
	InboxSize int

	OnWorkerTransition func(index int, from, to workers.State)
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "local"
	}
	if c.Tuning.ChunkSize == 0 {
		c.Tuning = tuning.Defaults()
	}
	if c.Blocks == nil {
		c.Blocks = catalogs.Default()
	}
	if c.Store == nil {
		c.Store = NopStore{}
	}
	if c.Network == nil {
		c.Network = NopNetwork{}
	}
	if c.Logger == nil {
		c.Logger = log.New(log.Writer(), "[world] ", log.LstdFlags|log.Lmicroseconds)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 4096
	}
}
