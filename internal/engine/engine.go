// Package engine implements the failure manager: the Monte Carlo
// orchestrator that samples a failure pattern, builds a NetworkView, runs
// the configured analyzers against it, and folds the resulting records into
// an Aggregator. It owns the worker pool and the per-iteration state
// machine (Pending -> Sampled -> Viewing -> Analyzing -> Done|Failed); the
// graph algorithms themselves live in internal/kernel and are invoked only
// through internal/network and internal/analyzer.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"netgraph/internal/aggregate"
	"netgraph/internal/analyzer"
	"netgraph/internal/network"
	"netgraph/internal/policy"
	"netgraph/internal/seed"
	"netgraph/pkg/apperror"
	"netgraph/pkg/logger"
	"netgraph/pkg/metrics"
	"netgraph/pkg/telemetry"
)

// State is one iteration's position in the per-iteration state machine.
type State int

const (
	StatePending State = iota
	StateSampled
	StateViewing
	StateAnalyzing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSampled:
		return "sampled"
	case StateViewing:
		return "viewing"
	case StateAnalyzing:
		return "analyzing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config configures one engine run. The engine abstracts over analyzers via
// the analyzer.Analyzer capability: Analyzers may mix a capacity analyzer,
// a placement analyzer, or several of either, and every one of them runs
// against every iteration's view.
type Config struct {
	Network       *network.Network
	Policy        *policy.Policy // nil or empty Modes => every iteration is baseline-equivalent
	Analyzers     []analyzer.Analyzer
	Iterations    int
	Parallelism   int
	Baseline      bool
	StorePatterns bool
	// MasterSeed, when non-nil, makes every randomized decision in this run
	// reproducible: nil means "unseeded", matching seed.Manager's contract.
	MasterSeed *string
	Metrics    *metrics.Metrics // optional; defaults to metrics.Default()
}

// RunError describes the first fatal error that aborted a run, carrying the
// iteration index and derived seed so a caller can reproduce it per §7.
type RunError struct {
	Iteration int
	Seed      uint32
	Kind      string // "iteration_error" or "resource_error"
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("engine: iteration %d (seed %d) failed: %s: %v", e.Iteration, e.Seed, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Result is the engine's output: a fully folded Aggregator, how many
// iterations completed, and the first fatal error if the run was cancelled
// partway through.
type Result struct {
	Aggregator *aggregate.Aggregator
	Completed  int
	FatalError *RunError
}

// FailureManager orchestrates Monte Carlo iterations per the engine
// protocol: sample a pattern, build a view, dispatch analyzers, fold
// records, in a worker pool of Config.Parallelism goroutines.
type FailureManager struct {
	cfg     Config
	seedMgr *seed.Manager
}

// New validates nothing; call Run to validate and execute.
func New(cfg Config) *FailureManager {
	var sm *seed.Manager
	if cfg.MasterSeed != nil {
		sm = seed.New(*cfg.MasterSeed)
	} else {
		sm = seed.Unseeded()
	}
	return &FailureManager{cfg: cfg, seedMgr: sm}
}

type iterationJob struct {
	index      int
	isBaseline bool
}

type iterationOutcome struct {
	index         int
	isBaseline    bool
	patternHash   string
	excludedNodes []string
	excludedLinks []string
	records       []analyzer.FlowResult
	seed          uint32
	err           error
}

// Run executes the configured number of iterations and returns the folded
// Result. Validation errors (malformed policy, nil network) are returned
// immediately and the engine never starts a worker. A fatal iteration error
// cancels outstanding work; Run still returns the partial Result alongside
// a non-nil error so a caller can inspect what was collected.
func (fm *FailureManager) Run(ctx context.Context) (*Result, error) {
	cfg := fm.cfg
	if cfg.Network == nil {
		return nil, apperror.New(apperror.CodeInvalidArgument, "engine: network is required")
	}
	if err := cfg.Network.Validate(); err != nil {
		return nil, err
	}
	if cfg.Policy != nil {
		if err := cfg.Policy.Validate(); err != nil {
			return nil, err
		}
	}
	if len(cfg.Analyzers) == 0 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "engine: at least one analyzer is required")
	}
	if cfg.Iterations < 0 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "engine: iterations must be >= 0")
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.Default()
	}

	agg := aggregate.New(cfg.StorePatterns)
	if cfg.Iterations == 0 {
		return &Result{Aggregator: agg}, nil
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	jobs := make([]iterationJob, 0, cfg.Iterations)
	start := 0
	if cfg.Baseline {
		jobs = append(jobs, iterationJob{index: 0, isBaseline: true})
		start = 1
	}
	for i := start; i < cfg.Iterations; i++ {
		jobs = append(jobs, iterationJob{index: i})
	}

	taskCh := make(chan iterationJob, len(jobs))
	for _, j := range jobs {
		taskCh <- j
	}
	close(taskCh)

	resultCh := make(chan iterationOutcome, parallelism*2)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go fm.worker(runCtx, w, taskCh, resultCh, &wg, m)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var fatal *RunError
	completed := 0
	for outcome := range resultCh {
		if outcome.err != nil {
			m.IterationsTotal.WithLabelValues("failed").Inc()
			if fatal == nil {
				fatal = &RunError{Iteration: outcome.index, Seed: outcome.seed, Kind: kindOf(outcome.err), Err: outcome.err}
				logger.Error("engine: iteration failed, cancelling outstanding work",
					"iteration", outcome.index, "seed", outcome.seed, "error", outcome.err)
				cancel()
			}
			continue
		}

		if cfg.StorePatterns {
			agg.AddPattern(outcome.patternHash, outcome.excludedNodes, outcome.excludedLinks, outcome.isBaseline)
		}
		agg.AddRecords(outcome.patternHash, outcome.records)
		m.AggregateFolds.Add(float64(len(outcome.records)))
		m.IterationsTotal.WithLabelValues("ok").Inc()
		completed++
	}

	if fatal != nil {
		return &Result{Aggregator: agg, Completed: completed, FatalError: fatal}, fatal
	}
	return &Result{Aggregator: agg, Completed: completed}, nil
}

// worker pulls iteration jobs off tasks until the channel closes or ctx is
// cancelled, running one iteration end-to-end per job: sample pattern,
// build view, run every analyzer, emit a record batch. No suspension point
// exists within a single iteration; workers only block waiting for the next
// job or room to emit a result.
func (fm *FailureManager) worker(ctx context.Context, workerID int, tasks <-chan iterationJob, out chan<- iterationOutcome, wg *sync.WaitGroup, m *metrics.Metrics) {
	defer wg.Done()
	for job := range tasks {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.WorkersBusy.Inc()
		outcome := fm.runIteration(ctx, workerID, job)
		m.WorkersBusy.Dec()

		select {
		case out <- outcome:
		case <-ctx.Done():
			return
		}
	}
}

func (fm *FailureManager) runIteration(ctx context.Context, workerID int, job iterationJob) iterationOutcome {
	idx := job.index
	state := StatePending

	workerSeed, _ := fm.seedMgr.Derive("worker", idx)
	spanCtx, span := telemetry.StartIteration(ctx, idx, workerSeed)
	defer span.End()

	state = StateSampled
	var excluded policy.ExcludedSet
	policySeed, unseeded := fm.seedMgr.Derive("policy_sample", idx)
	if !job.isBaseline && fm.cfg.Policy != nil && len(fm.cfg.Policy.Modes) > 0 {
		rng := rngFromSeed(policySeed, unseeded, idx)
		var err error
		excluded, err = fm.cfg.Policy.Apply(fm.cfg.Network, rng)
		if err != nil {
			state = StateFailed
			wrapped := apperror.Wrap(err, apperror.CodeIterationFailed, "failure policy sampling failed").
				WithDetails("iteration", idx).WithDetails("seed", policySeed)
			telemetry.SetError(spanCtx, wrapped)
			logger.Debug("engine: iteration state transition", "worker", workerID, "iteration", idx, "state", state.String())
			return iterationOutcome{index: idx, isBaseline: job.isBaseline, seed: policySeed, err: wrapped}
		}
	}

	state = StateViewing
	_, viewSpan := telemetry.StartStage(spanCtx, "view")
	view := network.FromExcludedSets(fm.cfg.Network, excluded.Nodes, excluded.Links)
	viewSpan.End()

	state = StateAnalyzing
	_, analyzeSpan := telemetry.StartStage(spanCtx, "analyze")
	var records []analyzer.FlowResult
	for ai, a := range fm.cfg.Analyzers {
		// Derived per (iteration, analyzer index) so every randomized
		// tie-break an analyzer might need is independently reproducible;
		// the capacity/placement analyzers are deterministic given a view
		// and do not draw on it. The derived value is discarded here and is
		// not attached to any span.
		analyzerSeed, _ := fm.seedMgr.Derive("analyzer", idx, ai)
		_ = analyzerSeed
		recs, err := a.Run(view)
		if err != nil {
			analyzeSpan.End()
			state = StateFailed
			wrapped := apperror.Wrap(err, apperror.CodeIterationFailed, "analyzer failed").
				WithDetails("iteration", idx).WithDetails("seed", policySeed).WithDetails("analyzer_index", ai)
			telemetry.SetError(spanCtx, wrapped)
			logger.Debug("engine: iteration state transition", "worker", workerID, "iteration", idx, "state", state.String())
			return iterationOutcome{index: idx, isBaseline: job.isBaseline, seed: policySeed, err: wrapped}
		}
		records = append(records, recs...)
	}
	analyzeSpan.End()
	state = StateDone
	logger.Debug("engine: iteration state transition", "worker", workerID, "iteration", idx, "state", state.String())

	hash := aggregate.PatternHash(excluded.Nodes, excluded.Links)
	return iterationOutcome{
		index:         idx,
		isBaseline:    job.isBaseline,
		patternHash:   hash,
		excludedNodes: excluded.Nodes,
		excludedLinks: excluded.Links,
		records:       records,
		seed:          policySeed,
	}
}

// rngFromSeed builds the per-iteration RNG the policy sampler uses. An
// unseeded manager falls back to a nondeterministic source instead of the
// (meaningless) zero seed it reports, still perturbed per-iteration so
// concurrent workers don't share identical unseeded streams.
func rngFromSeed(s uint32, unseeded bool, iteration int) *rand.Rand {
	if unseeded {
		return rand.New(rand.NewSource(time.Now().UnixNano() + int64(iteration)))
	}
	return rand.New(rand.NewSource(int64(s)))
}

func kindOf(err error) string {
	switch apperror.Code(err) {
	case apperror.CodeWorkerPoolExhausted, apperror.CodeChannelClosed:
		return "resource_error"
	default:
		return "iteration_error"
	}
}
