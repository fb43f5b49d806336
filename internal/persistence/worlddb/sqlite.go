package worlddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelcraft.ai/voxelclient/internal/sim/world"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

var ErrClosed = errors.New("worlddb: closed")

type Options struct {
	QueueSize     int
	CommitEvery   int
	CommitMaxWait time.Duration

	// DamageTTL bounds how long stored block damage survives; zero keeps it forever.
	DamageTTL time.Duration

	Logger *log.Logger
	Now    func() time.Time
}

func (o *Options) applyDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 65536
	}
	if o.CommitEvery <= 0 {
		o.CommitEvery = 2000
	}
	if o.CommitMaxWait <= 0 {
		o.CommitMaxWait = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "[worlddb] ", log.LstdFlags|log.Lmicroseconds)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// DB is the client's local world store. Every statement, reads included, runs on one
// writer goroutine inside a batched transaction, so reads see unflushed writes.
type DB struct {
	db   *sql.DB
	opts Options

	mu   sync.RWMutex // held for reading while sending on ch
	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
	errs   atomic.Uint64
}

type reqKind int

const (
	reqBlock reqKind = iota + 1
	reqLight
	reqDamage
	reqSign
	reqDeleteSign
	reqDeleteSigns
	reqKey
	reqState
	reqCommit

	reqLoadBlocks
	reqLoadLights
	reqLoadDamage
	reqLoadSigns
	reqTrimDamage
	reqGetKey
	reqLoadState
)

type req struct {
	kind reqKind

	p, q       int
	x, y, z, w int
	face       int
	text       string
	key        int
	state      stateRow

	reply chan reply
}

type reply struct {
	entries []store.Entry
	signs   []store.Sign
	key     int
	state   stateRow
	ok      bool
}

type stateRow struct {
	X, Y, Z, RX, RY float32
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	Errors        uint64
}

func Open(path string, opts Options) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("worlddb: empty db path")
	}
	opts.applyDefaults()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("worlddb: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("worlddb: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("worlddb: pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("worlddb: schema: %w", err)
	}

	s := &DB{
		db:   db,
		opts: opts,
		ch:   make(chan req, opts.QueueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS block (
			p INTEGER NOT NULL,
			q INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			w INTEGER NOT NULL,
			PRIMARY KEY (p, q, x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS light (
			p INTEGER NOT NULL,
			q INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			w INTEGER NOT NULL,
			PRIMARY KEY (p, q, x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS damage (
			p INTEGER NOT NULL,
			q INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			w INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (p, q, x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS sign (
			p INTEGER NOT NULL,
			q INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			face INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (x, y, z, face)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sign_pq ON sign(p, q);`,
		`CREATE TABLE IF NOT EXISTS key (
			p INTEGER NOT NULL,
			q INTEGER NOT NULL,
			key INTEGER NOT NULL,
			PRIMARY KEY (p, q)
		);`,
		`CREATE TABLE IF NOT EXISTS state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			rx REAL NOT NULL,
			ry REAL NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending writes and closes the database. Later calls are no-ops.
func (s *DB) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *DB) Stats() Stats {
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		Errors:        s.errs.Load(),
	}
}

// send blocks while the queue is full. It returns ErrClosed once Close has started.
func (s *DB) send(r req) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return ErrClosed
	}
	s.ch <- r
	return nil
}

func (s *DB) query(r req) (reply, bool) {
	r.reply = make(chan reply, 1)
	if err := s.send(r); err != nil {
		return reply{}, false
	}
	return <-r.reply, true
}

func (s *DB) InsertBlock(p, q, x, y, z, w int) {
	_ = s.send(req{kind: reqBlock, p: p, q: q, x: x, y: y, z: z, w: w})
}

func (s *DB) InsertLight(p, q, x, y, z, w int) {
	_ = s.send(req{kind: reqLight, p: p, q: q, x: x, y: y, z: z, w: w})
}

func (s *DB) InsertDamage(p, q, x, y, z, w int) {
	_ = s.send(req{kind: reqDamage, p: p, q: q, x: x, y: y, z: z, w: w})
}

func (s *DB) InsertSign(p, q, x, y, z, face int, text string) {
	_ = s.send(req{kind: reqSign, p: p, q: q, x: x, y: y, z: z, face: face, text: text})
}

func (s *DB) DeleteSign(x, y, z, face int) {
	_ = s.send(req{kind: reqDeleteSign, x: x, y: y, z: z, face: face})
}

func (s *DB) DeleteSigns(x, y, z int) {
	_ = s.send(req{kind: reqDeleteSigns, x: x, y: y, z: z})
}

func (s *DB) SetKey(p, q, key int) {
	_ = s.send(req{kind: reqKey, p: p, q: q, key: key})
}

func (s *DB) SaveState(x, y, z, rx, ry float32) {
	_ = s.send(req{kind: reqState, state: stateRow{X: x, Y: y, Z: z, RX: rx, RY: ry}})
}

// Commit flushes the open transaction without waiting for it.
func (s *DB) Commit() {
	_ = s.send(req{kind: reqCommit})
}

func (s *DB) LoadBlocks(m *store.Map, p, q int) { s.loadInto(reqLoadBlocks, m, p, q) }
func (s *DB) LoadLights(m *store.Map, p, q int) { s.loadInto(reqLoadLights, m, p, q) }
func (s *DB) LoadDamage(m *store.Map, p, q int) { s.loadInto(reqLoadDamage, m, p, q) }

func (s *DB) loadInto(kind reqKind, m *store.Map, p, q int) {
	rep, ok := s.query(req{kind: kind, p: p, q: q})
	if !ok {
		return
	}
	for _, e := range rep.entries {
		m.Set(e.X, e.Y, e.Z, e.W)
	}
}

func (s *DB) LoadSigns(list *store.SignList, p, q int) {
	rep, ok := s.query(req{kind: reqLoadSigns, p: p, q: q})
	if !ok {
		return
	}
	for _, sg := range rep.signs {
		list.Add(sg)
	}
}

// TrimDamage drops the chunk's damage rows older than the damage TTL and waits for
// the delete so a following LoadDamage never sees them.
func (s *DB) TrimDamage(p, q int) {
	if s.opts.DamageTTL <= 0 {
		return
	}
	s.query(req{kind: reqTrimDamage, p: p, q: q})
}

func (s *DB) GetKey(p, q int) int {
	rep, _ := s.query(req{kind: reqGetKey, p: p, q: q})
	return rep.key
}

func (s *DB) LoadState() (x, y, z, rx, ry float32, ok bool) {
	rep, sent := s.query(req{kind: reqLoadState})
	if !sent || !rep.ok {
		return 0, 0, 0, 0, 0, false
	}
	st := rep.state
	return st.X, st.Y, st.Z, st.RX, st.RY, true
}

var _ world.Store = (*DB)(nil)

type statements struct {
	insertBlock, insertLight, insertDamage, insertSign *sql.Stmt
	deleteSign, deleteSigns, insertKey, insertState    *sql.Stmt
	loadBlocks, loadLights, loadDamage, loadSigns      *sql.Stmt
	trimDamage, getKey, loadState                      *sql.Stmt
}

func (s *DB) prepare() (*statements, error) {
	var st statements
	defs := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&st.insertBlock, `INSERT OR REPLACE INTO block(p,q,x,y,z,w) VALUES(?,?,?,?,?,?)`},
		{&st.insertLight, `INSERT OR REPLACE INTO light(p,q,x,y,z,w) VALUES(?,?,?,?,?,?)`},
		{&st.insertDamage, `INSERT OR REPLACE INTO damage(p,q,x,y,z,w,updated_at) VALUES(?,?,?,?,?,?,?)`},
		{&st.insertSign, `INSERT OR REPLACE INTO sign(p,q,x,y,z,face,text) VALUES(?,?,?,?,?,?,?)`},
		{&st.deleteSign, `DELETE FROM sign WHERE x = ? AND y = ? AND z = ? AND face = ?`},
		{&st.deleteSigns, `DELETE FROM sign WHERE x = ? AND y = ? AND z = ?`},
		{&st.insertKey, `INSERT OR REPLACE INTO key(p,q,key) VALUES(?,?,?)`},
		{&st.insertState, `INSERT OR REPLACE INTO state(id,x,y,z,rx,ry) VALUES(1,?,?,?,?,?)`},
		{&st.loadBlocks, `SELECT x, y, z, w FROM block WHERE p = ? AND q = ?`},
		{&st.loadLights, `SELECT x, y, z, w FROM light WHERE p = ? AND q = ?`},
		{&st.loadDamage, `SELECT x, y, z, w FROM damage WHERE p = ? AND q = ?`},
		{&st.loadSigns, `SELECT x, y, z, face, text FROM sign WHERE p = ? AND q = ?`},
		{&st.trimDamage, `DELETE FROM damage WHERE p = ? AND q = ? AND updated_at < ?`},
		{&st.getKey, `SELECT key FROM key WHERE p = ? AND q = ?`},
		{&st.loadState, `SELECT x, y, z, rx, ry FROM state WHERE id = 1`},
	}
	for _, d := range defs {
		stmt, err := s.db.Prepare(d.query)
		if err != nil {
			st.close()
			return nil, err
		}
		*d.dst = stmt
	}
	return &st, nil
}

func (st *statements) close() {
	for _, stmt := range []*sql.Stmt{
		st.insertBlock, st.insertLight, st.insertDamage, st.insertSign,
		st.deleteSign, st.deleteSigns, st.insertKey, st.insertState,
		st.loadBlocks, st.loadLights, st.loadDamage, st.loadSigns,
		st.trimDamage, st.getKey, st.loadState,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

func (s *DB) loop() {
	ctx := context.Background()
	logger := s.opts.Logger

	st, err := s.prepare()
	if err != nil {
		logger.Printf("prepare: %v", err)
		// Keep draining so callers never block; queries answer empty.
		for r := range s.ch {
			if r.reply != nil {
				r.reply <- reply{}
			}
		}
		return
	}
	defer st.close()

	var (
		tx         *sql.Tx
		opCount    int
		lastCommit = time.Now()
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			s.fail("begin", err)
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.fail("commit", err)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(stmt *sql.Stmt, args ...any) {
		if _, err := tx.Stmt(stmt).Exec(args...); err != nil {
			s.fail("exec", err)
			return
		}
		opCount++
	}

	for r := range s.ch {
		if r.kind == reqCommit {
			commit()
			continue
		}
		begin()
		if tx == nil {
			if r.reply != nil {
				r.reply <- reply{}
			}
			continue
		}
		switch r.kind {
		case reqBlock:
			exec(st.insertBlock, r.p, r.q, r.x, r.y, r.z, r.w)
		case reqLight:
			exec(st.insertLight, r.p, r.q, r.x, r.y, r.z, r.w)
		case reqDamage:
			exec(st.insertDamage, r.p, r.q, r.x, r.y, r.z, r.w, s.opts.Now().Unix())
		case reqSign:
			exec(st.insertSign, r.p, r.q, r.x, r.y, r.z, r.face, r.text)
		case reqDeleteSign:
			exec(st.deleteSign, r.x, r.y, r.z, r.face)
		case reqDeleteSigns:
			exec(st.deleteSigns, r.x, r.y, r.z)
		case reqKey:
			exec(st.insertKey, r.p, r.q, r.key)
		case reqState:
			exec(st.insertState, r.state.X, r.state.Y, r.state.Z, r.state.RX, r.state.RY)

		case reqLoadBlocks:
			r.reply <- reply{entries: s.loadEntries(tx.Stmt(st.loadBlocks), r.p, r.q)}
		case reqLoadLights:
			r.reply <- reply{entries: s.loadEntries(tx.Stmt(st.loadLights), r.p, r.q)}
		case reqLoadDamage:
			r.reply <- reply{entries: s.loadEntries(tx.Stmt(st.loadDamage), r.p, r.q)}
		case reqLoadSigns:
			r.reply <- reply{signs: s.loadSigns(tx.Stmt(st.loadSigns), r.p, r.q)}
		case reqTrimDamage:
			cutoff := s.opts.Now().Add(-s.opts.DamageTTL).Unix()
			exec(st.trimDamage, r.p, r.q, cutoff)
			r.reply <- reply{}
		case reqGetKey:
			var key int
			if err := tx.Stmt(st.getKey).QueryRow(r.p, r.q).Scan(&key); err != nil && !errors.Is(err, sql.ErrNoRows) {
				s.fail("get key", err)
			}
			r.reply <- reply{key: key}
		case reqLoadState:
			var row stateRow
			err := tx.Stmt(st.loadState).QueryRow().Scan(&row.X, &row.Y, &row.Z, &row.RX, &row.RY)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				s.fail("load state", err)
			}
			r.reply <- reply{state: row, ok: err == nil}
		}
		if opCount >= s.opts.CommitEvery || time.Since(lastCommit) >= s.opts.CommitMaxWait {
			commit()
		}
	}

	commit()
}

func (s *DB) loadEntries(stmt *sql.Stmt, p, q int) []store.Entry {
	rows, err := stmt.Query(p, q)
	if err != nil {
		s.fail("load", err)
		return nil
	}
	defer rows.Close()
	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.X, &e.Y, &e.Z, &e.W); err != nil {
			s.fail("scan", err)
			return out
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		s.fail("rows", err)
	}
	return out
}

func (s *DB) loadSigns(stmt *sql.Stmt, p, q int) []store.Sign {
	rows, err := stmt.Query(p, q)
	if err != nil {
		s.fail("load signs", err)
		return nil
	}
	defer rows.Close()
	var out []store.Sign
	for rows.Next() {
		var sg store.Sign
		if err := rows.Scan(&sg.X, &sg.Y, &sg.Z, &sg.Face, &sg.Text); err != nil {
			s.fail("scan sign", err)
			return out
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		s.fail("rows", err)
	}
	return out
}

func (s *DB) fail(op string, err error) {
	s.errs.Add(1)
	s.opts.Logger.Printf("%s: %v", op, err)
}
