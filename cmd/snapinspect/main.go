package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	persistlog "voxelcraft.ai/voxelclient/internal/persistence/log"
	"voxelcraft.ai/voxelclient/internal/persistence/snapshot"
	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst")
		headerOnly = flag.Bool("header", false, "print the header line only")
		chunks     = flag.Bool("chunks", false, "print per-chunk cell counts")
		auditDir   = flag.String("audit", "", "audit dir containing audit-*.jsonl.zst; replays block edits made after the snapshot (optional)")
		configDir  = flag.String("configs", "./configs", "config directory")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	if *headerOnly {
		h, err := snapshot.ReadHeader(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read header:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d world=%s frame=%d chunks=%d created=%s\n", h.Version, h.WorldID, h.Frame, h.Chunks, h.CreatedAt)
		return
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d world=%s frame=%d seed=%d chunk_size=%d height=%d chunks=%d player=(%.2f,%.2f,%.2f)\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Frame, snap.Seed, snap.ChunkSize, snap.Height,
		len(snap.Chunks), snap.Player.X, snap.Player.Y, snap.Player.Z)
	if *chunks {
		printChunks(os.Stdout, snap)
	}

	if *auditDir == "" {
		return
	}

	blocks, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tune := tuning.Defaults()
	tune.ChunkSize = snap.ChunkSize
	tune.WorldHeight = snap.Height
	tune.Workers = 1
	tune.MaxChunks = max(tune.MaxChunks, len(snap.Chunks))
	w, err := world.New(world.WorldConfig{ID: snap.Header.WorldID, Seed: snap.Seed, Tuning: tune, Blocks: blocks})
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := w.ImportSnapshot(snap); err != nil {
		fmt.Fprintln(os.Stderr, "import snapshot:", err)
		os.Exit(1)
	}

	since, err := time.Parse(time.RFC3339, snap.Header.CreatedAt)
	if err != nil {
		fmt.Fprintln(os.Stderr, "snapshot created_at:", err)
		os.Exit(1)
	}
	files, err := persistlog.AuditFiles(*auditDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list audit:", err)
		os.Exit(1)
	}
	var st replayStats
	for _, path := range files {
		if err := replayFile(w, path, since, &st); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay: applied=%d skipped=%d unloaded=%d conflicts=%d\n", st.applied, st.skipped, st.unloaded, st.conflicts)
}

func printChunks(out io.Writer, snap snapshot.SnapshotV1) {
	fmt.Fprintf(out, "%6s %6s %7s %6s %6s %5s\n", "p", "q", "blocks", "lights", "damage", "signs")
	for _, ch := range snap.Chunks {
		fmt.Fprintf(out, "%6d %6d %7d %6d %6d %5d\n", ch.P, ch.Q, len(ch.Blocks), len(ch.Lights), len(ch.Damage), len(ch.Signs))
	}
}

type replayStats struct {
	applied, skipped, unloaded, conflicts int
}

// replayFile re-applies SET_BLOCK entries newer than since. An entry whose recorded
// previous block differs from the world is counted as a conflict and applied anyway.
func replayFile(w *world.World, path string, since time.Time, st *replayStats) error {
	cs := w.Tuning().ChunkSize
	return persistlog.ReadAudit(path, func(e world.AuditEntry) error {
		at, err := time.Parse(time.RFC3339Nano, e.Time)
		if err != nil {
			return fmt.Errorf("%s: time %q: %w", filepath.Base(path), e.Time, err)
		}
		if e.Action != "SET_BLOCK" || !at.After(since) {
			st.skipped++
			return nil
		}
		x, y, z := e.Pos[0], e.Pos[1], e.Pos[2]
		if w.FindChunk(mathx.ChunkedInt(x, cs), mathx.ChunkedInt(z, cs)) == nil {
			st.unloaded++
			return nil
		}
		if w.GetBlock(x, y, z) != e.From {
			st.conflicts++
		}
		w.SetBlock(x, y, z, e.To)
		st.applied++
		return nil
	})
}
