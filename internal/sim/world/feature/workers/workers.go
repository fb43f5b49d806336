package workers

import (
	"log"
	"runtime/debug"
	"sync"

	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mesh"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

type State int

const (
	Idle State = iota
	Busy
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Busy:
		return "BUSY"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Job is one chunk build. The maps are private copies owned by the job until it is
// reconciled; index [1][1] is the target chunk.
type Job struct {
	P, Q int
	Load bool

	// Epoch is not used by the pool; the scheduler uses it to drop stale results.
	Epoch uint64

	Blocks [3][3]*store.Map
	Lights [3][3]*store.Map
	Damage [3][3]*store.Map

	Result mesh.Result
}

// Loader fills the center maps of a job for a chunk seen for the first time.
// It runs on worker goroutines.
type Loader interface {
	Load(job *Job)
}

type Config struct {
	Count  int
	Loader Loader
	Props  mesh.Props
	Mesh   mesh.Options
	Logger *log.Logger

	// OnTransition is called with the worker lock held and must not call back into
	// the worker.
	OnTransition func(index int, from, to State)
}

type Pool struct {
	cfg     Config
	workers []*Worker
	wg      sync.WaitGroup
	once    sync.Once
}

type Worker struct {
	pool  *Pool
	index int

	mu    sync.Mutex
	cond  *sync.Cond
	state State
	job   *Job
	stop  bool
}

// New starts cfg.Count worker goroutines.
func New(cfg Config) *Pool {
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	p := &Pool{cfg: cfg}
	for i := 0; i < cfg.Count; i++ {
		w := &Worker{pool: p, index: i}
		w.cond = sync.NewCond(&w.mu)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go w.run()
	}
	return p
}

func (p *Pool) Len() int { return len(p.workers) }

func (p *Pool) Workers() []*Worker { return p.workers }

// Stop lets in-flight jobs finish and waits for every worker goroutine to exit.
// Finished jobs stay Done until reconciled.
func (p *Pool) Stop() {
	p.once.Do(func() {
		for _, w := range p.workers {
			w.mu.Lock()
			w.stop = true
			w.cond.Broadcast()
			w.mu.Unlock()
		}
		p.wg.Wait()
	})
}

func (w *Worker) Index() int { return w.index }

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Assign hands the worker a job built by build, but only when the worker is Idle.
// A nil job leaves the worker Idle. build runs without the worker lock; only the
// caller of Assign moves a worker out of Idle, so the state cannot change meanwhile.
func (w *Worker) Assign(build func() *Job) bool {
	w.mu.Lock()
	idle := w.state == Idle && !w.stop
	w.mu.Unlock()
	if !idle {
		return false
	}
	job := build()
	if job == nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop {
		return false
	}
	w.job = job
	w.setState(Busy)
	w.cond.Signal()
	return true
}

// Reconcile passes a finished job to apply and returns the worker to Idle.
func (w *Worker) Reconcile(apply func(*Job)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Done {
		return false
	}
	apply(w.job)
	w.job = nil
	w.setState(Idle)
	return true
}

func (w *Worker) setState(s State) {
	from := w.state
	w.state = s
	if h := w.pool.cfg.OnTransition; h != nil {
		h(w.index, from, s)
	}
}

func (w *Worker) run() {
	defer w.pool.wg.Done()
	for {
		w.mu.Lock()
		for w.state != Busy && !w.stop {
			w.cond.Wait()
		}
		if w.state != Busy {
			w.mu.Unlock()
			return
		}
		job := w.job
		w.mu.Unlock()

		w.process(job)

		w.mu.Lock()
		w.setState(Done)
		w.mu.Unlock()
	}
}

func (w *Worker) process(job *Job) {
	cfg := &w.pool.cfg
	defer func() {
		if r := recover(); r != nil {
			job.Result = mesh.Result{MinY: cfg.Mesh.Height}
			if cfg.Logger != nil {
				cfg.Logger.Printf("worker %d: chunk (%d,%d) panicked: %v\n%s", w.index, job.P, job.Q, r, debug.Stack())
			}
		}
	}()
	if job.Load && cfg.Loader != nil {
		cfg.Loader.Load(job)
	}
	nb := &mesh.Neighborhood{P: job.P, Q: job.Q, Blocks: job.Blocks, Lights: job.Lights}
	job.Result = mesh.Build(nb, cfg.Props, cfg.Mesh)
}
