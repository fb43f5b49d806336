package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelcraft.ai/voxelclient/internal/sim/world"
)

const (
	auditPrefix = "audit-"
	auditSuffix = ".jsonl.zst"
	hourLayout  = "2006-01-02-15"
)

// AuditLogger records local block edits as JSON lines in hourly zstd segments
// (<dir>/audit-YYYY-MM-DD-HH.jsonl.zst). The segment is picked from the entry's
// own timestamp, so a replay can find an edit from its time alone.
type AuditLogger struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	seg  string
	f    *os.File
	enc  *zstd.Encoder
	bw   *bufio.Writer
	rows int
}

func NewAuditLogger(worldDir string) *AuditLogger {
	return &AuditLogger{dir: filepath.Join(worldDir, "audit"), now: time.Now}
}

// Dir is where segments are written.
func (l *AuditLogger) Dir() string { return l.dir }

func (l *AuditLogger) WriteAudit(e world.AuditEntry) error {
	at := l.now()
	if e.Time == "" {
		e.Time = at.UTC().Format(time.RFC3339Nano)
	} else if t, err := time.Parse(time.RFC3339Nano, e.Time); err == nil {
		at = t
	} else {
		return fmt.Errorf("log: audit time %q: %w", e.Time, err)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("log: marshal audit: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seg := at.UTC().Format(hourLayout); seg != l.seg {
		if err := l.openLocked(seg); err != nil {
			return err
		}
	}
	line = append(line, '\n')
	if _, err := l.bw.Write(line); err != nil {
		return fmt.Errorf("log: write audit: %w", err)
	}
	l.rows++
	// One flush per entry.
	return l.bw.Flush()
}

func (l *AuditLogger) openLocked(seg string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("log: audit dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(l.dir, auditPrefix+seg+auditSuffix), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("log: open segment: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("log: zstd: %w", err)
	}
	l.f, l.enc, l.bw, l.seg = f, enc, bufio.NewWriterSize(enc, 32*1024), seg
	return nil
}

func (l *AuditLogger) closeLocked() error {
	if l.f == nil {
		return nil
	}
	err := l.bw.Flush()
	if cerr := l.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f, l.enc, l.bw, l.seg = nil, nil, nil, ""
	return err
}

// Rows is the number of entries written since the logger was created.
func (l *AuditLogger) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

func (l *AuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

var _ world.AuditLogger = (*AuditLogger)(nil)

// AuditFiles lists the segments in dir, oldest first.
func AuditFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, auditPrefix) || !strings.HasSuffix(name, auditSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	// Segment names sort chronologically.
	sort.Strings(out)
	return out, nil
}

// ReadAudit calls fn for every entry of one segment, in write order. A segment that
// was appended to across restarts holds several zstd frames; the decoder reads them
// back to back.
func ReadAudit(path string, fn func(world.AuditEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("log: zstd: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for n := 1; sc.Scan(); n++ {
		var e world.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), n, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}
