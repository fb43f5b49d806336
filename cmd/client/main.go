package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "voxelcraft.ai/voxelclient/internal/persistence/log"
	"voxelcraft.ai/voxelclient/internal/persistence/snapshot"
	"voxelcraft.ai/voxelclient/internal/persistence/worlddb"
	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/gen"
	"voxelcraft.ai/voxelclient/internal/transport/ws"
)

func main() {
	var (
		serverURL  = flag.String("server", "", "world server websocket url (empty: offline)")
		name       = flag.String("name", "player", "player name sent in HELLO")
		token      = flag.String("token", "", "auth token (or set VC_TOKEN)")
		worldID    = flag.String("world", "local", "world id (names the data directory)")
		seed       = flag.Int64("seed", 1337, "terrain seed when offline; online worlds use the server's seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "keep edits in memory only")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", false, "load latest snapshot from data dir if present (when -snapshot is empty)")
		saveOnExit = flag.Bool("snapshot_on_exit", true, "write a snapshot of loaded chunks on shutdown")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	blocks, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var (
		net    world.Network
		client *ws.Client
	)
	if url := strings.TrimSpace(*serverURL); url != "" {
		tok := *token
		if tok == "" {
			tok = os.Getenv("VC_TOKEN")
		}
		client, err = ws.Dial(ctx, url, ws.Options{
			Name:      *name,
			Token:     tok,
			ChunkSize: tune.ChunkSize,
			Logger:    log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds),
		})
		if err != nil {
			logger.Fatalf("connect: %v", err)
		}
		defer client.Close()
		wp := client.Welcome().WorldParams
		if wp.ChunkSize != 0 && wp.ChunkSize != tune.ChunkSize {
			logger.Fatalf("server chunk size %d, tuning has %d", wp.ChunkSize, tune.ChunkSize)
		}
		if wp.Height != 0 && wp.Height != tune.WorldHeight {
			logger.Fatalf("server world height %d, tuning has %d", wp.Height, tune.WorldHeight)
		}
		if wp.Digest != "" && wp.Digest != blocks.DefsDigest {
			logger.Fatalf("server block table %s, local %s", wp.Digest, blocks.DefsDigest)
		}
		*seed = wp.Seed
		net = client
		logger.Printf("connected to %s as %s (player %d, session %s)", url, client.Welcome().Name, client.Welcome().PlayerID, client.SessionID())
	}

	var st world.Store
	if !*disableDB {
		db, err := worlddb.Open(filepath.Join(worldDir, "world.db"), worlddb.Options{
			QueueSize:     tune.Store.QueueSize,
			CommitEvery:   tune.Store.CommitEvery,
			CommitMaxWait: time.Duration(tune.Store.CommitMaxWaitS * float64(time.Second)),
			DamageTTL:     time.Duration(tune.Store.DamageTTLS) * time.Second,
			Logger:        log.New(os.Stdout, "[worlddb] ", log.LstdFlags|log.Lmicroseconds),
		})
		if err != nil {
			logger.Fatalf("open world db: %v", err)
		}
		defer db.Close()
		st = db
	}

	auditLog := persistlog.NewAuditLogger(worldDir)
	defer auditLog.Close()

	palette, err := gen.PaletteFrom(blocks)
	if err != nil {
		logger.Fatalf("terrain palette: %v", err)
	}

	w, err := world.New(world.WorldConfig{
		ID:        *worldID,
		Seed:      *seed,
		Tuning:    tune,
		Blocks:    blocks,
		Store:     st,
		Network:   net,
		Generator: gen.New(*seed, tune.ChunkSize, tune.WorldHeight, palette),
		Audit:     auditLog,
		Logger:    log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds),
	})
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	defer w.Close()

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(worldDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s frame=%d chunks=%d", filepath.Base(snapshotToLoad), w.Frame(), w.ChunkCount())
	}

	if client != nil {
		// Applied after Spawn so the server's position wins over the saved one.
		if err := w.Enqueue(ctx, client.WelcomeUpdate()); err != nil {
			logger.Fatalf("welcome: %v", err)
		}
		go func() {
			if err := client.Run(ctx, w.Enqueue); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("connection lost: %v", err)
				cancel()
			}
		}()
	}

	logger.Printf("running world=%s seed=%d chunk_size=%d workers=%d", *worldID, *seed, tune.ChunkSize, tune.Workers)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("world stopped: %v", err)
	}

	if *saveOnExit {
		snap := w.ExportSnapshot()
		path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Frame))
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			logger.Printf("snapshot write: %v", err)
		} else {
			logger.Printf("snapshot written: %s chunks=%d", path, snap.Header.Chunks)
		}
	}
	if client != nil {
		logger.Printf("shutdown: %d outbound messages dropped", client.Dropped())
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// latestSnapshot returns the snapshot with the highest frame number, or "".
func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestFrame uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		frame, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || frame > bestFrame {
			bestFrame = frame
			best = filepath.Join(dir, name)
		}
	}
	return best
}
