package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trknhr/ghostguess/internal/pattern"
	"golang.org/x/sync/errgroup"
)

// Routed runs Threads workers that each own an inbound channel. Workers
// send the children they produce to a router, which keeps them on a stack
// and hands them out round-robin. A counter of candidates not yet fully
// processed tells the router when the space is exhausted; it then closes
// every inbound channel. Workers also bound each wait on their channel by
// Options.IdleTimeout and leave once that counter shows the run drained.
// The first match cancels the run.
func Routed(ctx context.Context, set *pattern.Set, opts Options) (Result, error) {
	opts, err := opts.prepare(set)
	if err != nil {
		return Result{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &router{
		out:     make(chan Candidate, opts.BatchSize),
		inboxes: make([]chan Candidate, opts.Threads),
		drained: make(chan struct{}),
	}
	for i := range r.inboxes {
		r.inboxes[i] = make(chan Candidate, opts.BatchSize)
	}
	r.pending.Store(1)

	var shared counters
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		r.run(gctx, Candidate{Probability: 1})
		return nil
	})
	for _, inbox := range r.inboxes {
		g.Go(func() error {
			w := &channelWorker{
				set:    set,
				opts:   opts,
				inbox:  inbox,
				router: r,
				smooth: newSmoother(opts),
				shared: &shared,
				cancel: cancel,
			}
			w.run(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := shared.result(ModeRouted)
	opts.Observer.Finished(res)
	if !res.Found && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, nil
}

type router struct {
	out     chan Candidate
	inboxes []chan Candidate

	pending   atomic.Int64
	drained   chan struct{}
	drainOnce sync.Once
}

// done marks one candidate as fully processed, its children already sent.
func (r *router) done() {
	if r.pending.Add(-1) == 0 {
		r.drainOnce.Do(func() { close(r.drained) })
	}
}

func (r *router) isDrained() bool {
	select {
	case <-r.drained:
		return true
	default:
		return r.pending.Load() == 0
	}
}

func (r *router) run(ctx context.Context, seed Candidate) {
	defer func() {
		for _, inbox := range r.inboxes {
			close(inbox)
		}
	}()

	stack := []Candidate{seed}
	next := 0
	for {
		var send chan<- Candidate
		var head Candidate
		if len(stack) > 0 {
			send = r.inboxes[next]
			head = stack[len(stack)-1]
		}

		select {
		case <-ctx.Done():
			return
		case <-r.drained:
			return
		case c := <-r.out:
			stack = append(stack, c)
		case send <- head:
			stack = stack[:len(stack)-1]
			next = (next + 1) % len(r.inboxes)
		}
	}
}

type channelWorker struct {
	set    *pattern.Set
	opts   Options
	inbox  <-chan Candidate
	router *router
	smooth *smoother
	shared *counters
	cancel context.CancelFunc
}

func (w *channelWorker) run(ctx context.Context) {
	idle := time.NewTimer(w.opts.IdleTimeout)
	defer idle.Stop()

	for {
		current, ok := w.receive(ctx, idle)
		if !ok {
			return
		}
		w.shared.visited.Add(1)

		if w.opts.Matcher.Match(current.Text) {
			if w.shared.match(current.Text) {
				w.cancel()
			}
			return
		}
		if !w.expand(ctx, current) {
			return
		}
		w.router.done()
	}
}

// receive waits for the next candidate. The wait is bounded by the idle
// timeout; on expiry the worker gives up only if the run is drained, since
// the router may still hold work for it.
func (w *channelWorker) receive(ctx context.Context, idle *time.Timer) (Candidate, bool) {
	for {
		idle.Reset(w.opts.IdleTimeout)
		select {
		case <-ctx.Done():
			return Candidate{}, false
		case c, ok := <-w.inbox:
			return c, ok
		case <-idle.C:
			if w.router.isDrained() {
				return Candidate{}, false
			}
		}
	}
}

// expand sends the children of current to the router. It returns false if
// the run was cancelled while sending.
func (w *channelWorker) expand(ctx context.Context, current Candidate) bool {
	if current.depth >= w.opts.MaxLen {
		return true
	}
	if !w.smooth.admit(current.depth, current.Probability) {
		w.shared.pruned.Add(1)
		w.opts.Observer.Pruned(current)
		return true
	}

	w.shared.expanded.Add(1)
	w.opts.Observer.Expanded(current)
	for _, pf := range w.set.ProbableFollowers(current.Text) {
		w.router.pending.Add(1)
		select {
		case w.router.out <- current.extend(pf.Letter, pf.Probability):
		case <-ctx.Done():
			return false
		}
	}
	return true
}
