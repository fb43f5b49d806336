package main

import (
	"testing"
	"time"

	persistlog "voxelcraft.ai/voxelclient/internal/persistence/log"
	"voxelcraft.ai/voxelclient/internal/sim/catalogs"
	"voxelcraft.ai/voxelclient/internal/sim/tuning"
	"voxelcraft.ai/voxelclient/internal/sim/world"
)

func TestReplayFile_AppliesEditsAfterSnapshot(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	tune := tuning.Defaults()
	tune.Workers = 1
	src, err := world.New(world.WorldConfig{Tuning: tune, Now: func() time.Time { return t0 }})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	defer src.Close()
	if _, ok := src.CreateChunk(0, 0); !ok {
		t.Fatalf("create chunk")
	}
	snap := src.ExportSnapshot()

	dir := t.TempDir()
	audit := persistlog.NewAuditLogger(dir)
	stone, _ := catalogs.Default().ID("STONE")
	entries := []world.AuditEntry{
		{Time: t0.Add(-time.Second).Format(time.RFC3339Nano), Action: "SET_BLOCK", Pos: [3]int{1, 1, 1}, To: stone},
		{Time: t0.Add(time.Second).Format(time.RFC3339Nano), Action: "SET_BLOCK", Pos: [3]int{2, 5, 2}, To: stone},
		{Time: t0.Add(2 * time.Second).Format(time.RFC3339Nano), Action: "SET_BLOCK", Pos: [3]int{2, 5, 2}, From: 0, To: 0},
		{Time: t0.Add(3 * time.Second).Format(time.RFC3339Nano), Action: "SET_BLOCK", Pos: [3]int{500, 5, 2}, To: stone},
	}
	for _, e := range entries {
		if err := audit.WriteAudit(e); err != nil {
			t.Fatalf("audit: %v", err)
		}
	}
	if err := audit.Close(); err != nil {
		t.Fatalf("close audit: %v", err)
	}

	dst, err := world.New(world.WorldConfig{Tuning: tune})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	defer dst.Close()
	if err := dst.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	files, err := persistlog.AuditFiles(audit.Dir())
	if err != nil || len(files) != 1 {
		t.Fatalf("audit files: %v %v", files, err)
	}
	var st replayStats
	if err := replayFile(dst, files[0], t0, &st); err != nil {
		t.Fatalf("replay: %v", err)
	}
	// The second edit expected air but found the stone placed just before it.
	if st.applied != 2 || st.skipped != 1 || st.unloaded != 1 || st.conflicts != 1 {
		t.Fatalf("stats: %+v", st)
	}
	if dst.GetBlock(2, 5, 2) != 0 || dst.GetBlock(1, 1, 1) != 0 {
		t.Fatalf("replayed world wrong")
	}
}
