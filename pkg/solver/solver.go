// Package solver drives the single-threaded fusion -> journal -> construct
// pipeline from a FIFO request queue (spec.md §4.4 "Worker queue", §5
// "Scheduling model"). Exactly one goroutine ever touches the fusion
// trackers, subset cache, or journal state, so none of that state needs
// locking; the queue is the only synchronization point.
package solver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wordbench/wordbench/pkg/construct"
	"github.com/wordbench/wordbench/pkg/fusion"
	"github.com/wordbench/wordbench/pkg/journal"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

// Result is what one processed snapshot yields to its caller (spec.md §4.4
// Broadcast payload).
type Result struct {
	Players          [][]string
	AvailableLetters string
	RecommendedWords map[string][]string
	LettersToSteal   map[string]int
	Events           []journal.Event
}

// job is one queued snapshot plus the channel its result is posted back on.
type job struct {
	ctx      context.Context
	raw      snapshot.Snapshot
	resultCh chan<- jobOutcome
}

type jobOutcome struct {
	result Result
	err    error
}

// Solver is the single-worker queue. It owns the Fuser, Journal, and
// construct.Engine instances that must only ever be touched by its one
// goroutine (spec.md §5 "Shared-resource policy").
type Solver struct {
	fuser   *fusion.Fuser
	journal *journal.Journal
	engine  *construct.Engine
	weights construct.ScoreWeights

	jobs    chan job
	closeMu sync.Mutex
	closed  bool
	wg      sync.WaitGroup

	// wordOrder is the unique-word list in persisted insertion order, so a
	// single newly typed word lands last (spec.md §4.2 step 2's
	// incremental cache-extend path needs exactly that shape).
	wordOrder []string
}

// New creates a Solver and starts its single worker goroutine. queueSize
// bounds how many snapshots may be waiting; Submit rejects a request that
// arrives when the queue is full with ErrQueueFull (spec.md §4.4 "the HTTP
// layer hands off asynchronously").
func New(fuser *fusion.Fuser, j *journal.Journal, engine *construct.Engine, weights construct.ScoreWeights, queueSize int) *Solver {
	if queueSize <= 0 {
		queueSize = 32
	}
	s := &Solver{
		fuser:   fuser,
		journal: j,
		engine:  engine,
		weights: weights,
		jobs:    make(chan job, queueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Solver) run() {
	defer s.wg.Done()
	for j := range s.jobs {
		j.resultCh <- s.process(j)
	}
}

// process implements spec.md §5's cancellation contract: if the request's
// deadline has already passed by the time this job is dequeued, it is
// dropped without touching any tracker. A caller disconnecting (its context
// canceled rather than timed out) does not abort the job, whether it is
// still queued or already running (the caller simply stops listening on
// resultCh; process still runs to completion and commits tracker state).
func (s *Solver) process(j job) jobOutcome {
	if err := j.ctx.Err(); err == context.DeadlineExceeded {
		return jobOutcome{err: fmt.Errorf("solver: snapshot dropped, deadline exceeded before processing: %w", err)}
	}

	fused := s.fuser.Fuse(j.raw)
	events, players := s.journal.Process(fused, j.raw)

	uniqueWords := s.wordsInOrder(fused.WordSet())
	recs := s.engine.Solve(uniqueWords, fused.AvailableLetters, s.weights)

	recommended := make(map[string][]string, len(recs))
	lettersToSteal := make(map[string]int, len(recs))
	for _, r := range recs {
		recommended[r.Target] = r.Blocks
		lettersToSteal[r.Target] = r.LettersToSteal
	}

	return jobOutcome{result: Result{
		Players:          players,
		AvailableLetters: fused.AvailableLetters,
		RecommendedWords: recommended,
		LettersToSteal:   lettersToSteal,
		Events:           events,
	}}
}

// wordsInOrder returns set's members in s.wordOrder's existing relative
// order, with any newly present words appended at the end (new-to-old
// among themselves sorted for determinism), and then persists that order
// for the next call. Words no longer in set are dropped, which changes the
// signature construct.Engine sees and correctly forces a full rebuild
// there rather than a mistaken extend.
func (s *Solver) wordsInOrder(set map[string]bool) []string {
	next := make([]string, 0, len(set))
	seen := make(map[string]bool, len(set))
	for _, w := range s.wordOrder {
		if set[w] {
			next = append(next, w)
			seen[w] = true
		}
	}
	var added []string
	for w := range set {
		if !seen[w] {
			added = append(added, w)
		}
	}
	sort.Strings(added)
	next = append(next, added...)
	s.wordOrder = next
	return next
}

// Submit enqueues raw for processing and blocks until the solver posts a
// result or ctx is done. Enqueue never fails due to cancellation — only the
// wait for a result can be preempted from the caller's side; the job, once
// dequeued, still runs to completion unless its deadline has already passed
// (see process).
func (s *Solver) Submit(ctx context.Context, raw snapshot.Snapshot) (Result, error) {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return Result{}, ErrSolverClosed
	}
	resultCh := make(chan jobOutcome, 1)
	select {
	case s.jobs <- job{ctx: ctx, raw: raw, resultCh: resultCh}:
	default:
		s.closeMu.Unlock()
		return Result{}, ErrQueueFull
	}
	s.closeMu.Unlock()

	select {
	case outcome := <-resultCh:
		return outcome.result, outcome.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops accepting new snapshots and waits for the in-flight one (and
// any already queued) to finish.
func (s *Solver) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.closeMu.Unlock()
	s.wg.Wait()
}

// ErrQueueFull is returned by Submit when the solver's queue is saturated.
var ErrQueueFull = &SolverError{"solver queue full"}

// ErrSolverClosed is returned by Submit after Close.
var ErrSolverClosed = &SolverError{"solver closed"}

// SolverError is a simple typed error, matching the teacher's
// PoolError/BatchWriterError shape.
type SolverError struct{ msg string }

func (e *SolverError) Error() string { return e.msg }
