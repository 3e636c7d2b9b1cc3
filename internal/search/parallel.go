package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/trknhr/ghostguess/internal/pattern"
	"golang.org/x/sync/errgroup"
)

// counters are shared by the workers of one parallel run.
type counters struct {
	visited  atomic.Uint64
	expanded atomic.Uint64
	pruned   atomic.Uint64

	once     sync.Once
	password string
	found    atomic.Bool
}

func (c *counters) match(password string) bool {
	first := false
	c.once.Do(func() {
		c.password = password
		c.found.Store(true)
		first = true
	})
	return first
}

func (c *counters) result(mode Mode) Result {
	res := Result{
		Mode:     mode,
		Visited:  c.visited.Load(),
		Expanded: c.expanded.Load(),
		Pruned:   c.pruned.Load(),
	}
	if c.found.Load() {
		res.Found = true
		res.Password = c.password
	}
	return res
}

// Parallel runs Threads workers over one shared Frontier. Each worker takes
// a batch of up to BatchSize candidates under the lock, expands it into a
// private buffer without the lock and hands the children back. The first
// match closes the frontier, which stops every other worker. Each worker
// keeps its own likelihood estimates.
func Parallel(ctx context.Context, set *pattern.Set, opts Options) (Result, error) {
	opts, err := opts.prepare(set)
	if err != nil {
		return Result{}, err
	}

	frontier := NewFrontier(Candidate{Probability: 1})
	stop := context.AfterFunc(ctx, frontier.Close)
	defer stop()

	var shared counters
	var g errgroup.Group
	for i := 0; i < opts.Threads; i++ {
		g.Go(func() error {
			w := &batchWorker{
				set:      set,
				opts:     opts,
				frontier: frontier,
				smooth:   newSmoother(opts),
				shared:   &shared,
			}
			w.run()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := shared.result(ModeParallel)
	opts.Observer.Finished(res)
	if !res.Found && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, nil
}

type batchWorker struct {
	set      *pattern.Set
	opts     Options
	frontier *Frontier
	smooth   *smoother
	shared   *counters
}

func (w *batchWorker) run() {
	children := make([]Candidate, 0, 256)
	for {
		batch, ok := w.frontier.Take(w.opts.BatchSize)
		if !ok {
			return
		}

		children = children[:0]
		for i := len(batch) - 1; i >= 0; i-- {
			current := batch[i]
			w.shared.visited.Add(1)

			if w.opts.Matcher.Match(current.Text) {
				if w.shared.match(current.Text) {
					w.frontier.Close()
				}
				break
			}
			if current.depth >= w.opts.MaxLen {
				continue
			}
			if !w.smooth.admit(current.depth, current.Probability) {
				w.shared.pruned.Add(1)
				w.opts.Observer.Pruned(current)
				continue
			}

			w.shared.expanded.Add(1)
			w.opts.Observer.Expanded(current)
			for _, pf := range w.set.ProbableFollowers(current.Text) {
				children = append(children, current.extend(pf.Letter, pf.Probability))
			}
		}
		w.frontier.Return(children)
	}
}
