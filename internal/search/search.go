// Package search enumerates candidate passwords from a pattern set, most
// likely first, until a matcher accepts one or the space is exhausted.
//
// None of the strategies is complete: likelihood pruning and the
// significance cutoff both discard branches that could lead to the target.
// Visiting order is only locally best-first, since children are ranked by
// the model before being pushed onto a LIFO work list.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/trknhr/ghostguess/internal/match"
	"github.com/trknhr/ghostguess/internal/pattern"
)

type Mode string

const (
	ModeBestFirst   Mode = "best"
	ModeSignificant Mode = "significant"
	ModeParallel    Mode = "parallel"
	ModeRouted      Mode = "routed"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBestFirst, ModeSignificant, ModeParallel, ModeRouted:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want best, significant, parallel or routed)", s)
	}
}

// Candidate is a string on the frontier with the product of the follower
// probabilities that produced it.
type Candidate struct {
	Text        string
	Probability float64
	depth       int
}

func (c Candidate) extend(letter rune, probability float64) Candidate {
	return Candidate{
		Text:        c.Text + string(letter),
		Probability: c.Probability * probability,
		depth:       c.depth + 1,
	}
}

// Result is the outcome of a search. Found is false when the space was
// exhausted without a match.
type Result struct {
	Mode     Mode
	Password string
	Found    bool
	Visited  uint64
	Expanded uint64
	Pruned   uint64
}

// Observer is notified of search progress. Parallel modes call it from
// several goroutines at once.
type Observer interface {
	Expanded(c Candidate)
	Pruned(c Candidate)
	Finished(res Result)
}

type nopObserver struct{}

func (nopObserver) Expanded(Candidate) {}
func (nopObserver) Pruned(Candidate)   {}
func (nopObserver) Finished(Result)    {}

type Options struct {
	Mode Mode
	// MaxLen is the longest candidate, in runes, that is generated.
	MaxLen  int
	Matcher match.Matcher
	// FastSmoothing weights the old estimate when a candidate beats it,
	// SlowSmoothing when it does not.
	FastSmoothing float64
	SlowSmoothing float64
	// Exhaustive turns likelihood pruning off.
	Exhaustive bool
	Threads    int
	BatchSize  int
	// IdleTimeout bounds each wait of a routed worker on its inbox. A worker
	// whose wait times out leaves if the run is drained and waits again
	// otherwise.
	IdleTimeout time.Duration
	Observer    Observer
}

func DefaultOptions() Options {
	return Options{
		Mode:          ModeBestFirst,
		FastSmoothing: 0.9,
		SlowSmoothing: 0.7,
		Threads:       runtime.NumCPU(),
		BatchSize:     100,
		IdleTimeout:   50 * time.Millisecond,
	}
}

func (o Options) prepare(set *pattern.Set) (Options, error) {
	if set == nil {
		return o, errors.New("search: no model")
	}
	if o.Matcher == nil {
		return o, errors.New("search: no matcher")
	}
	if o.MaxLen < 1 {
		return o, fmt.Errorf("search: max length must be positive, got %d", o.MaxLen)
	}
	if o.FastSmoothing < 0 || o.FastSmoothing >= 1 || o.SlowSmoothing < 0 || o.SlowSmoothing >= 1 {
		return o, fmt.Errorf("search: smoothing factors must be in [0,1), got %v and %v", o.FastSmoothing, o.SlowSmoothing)
	}
	if _, err := set.Alphabet(); err != nil {
		return o, err
	}
	if o.Threads < 1 {
		o.Threads = 1
	}
	if o.BatchSize < 1 {
		o.BatchSize = 1
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultOptions().IdleTimeout
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o, nil
}

// Run dispatches on opts.Mode.
func Run(ctx context.Context, set *pattern.Set, opts Options) (Result, error) {
	switch opts.Mode {
	case ModeBestFirst, "":
		return BestFirst(ctx, set, opts)
	case ModeSignificant:
		return Significant(ctx, set, opts)
	case ModeParallel:
		return Parallel(ctx, set, opts)
	case ModeRouted:
		return Routed(ctx, set, opts)
	default:
		return Result{}, fmt.Errorf("unknown search mode %q", opts.Mode)
	}
}

// smoother keeps one exponentially smoothed probability per candidate
// length. A candidate above the estimate for its length is expanded and
// nudges the estimate with the fast factor; anything else is pruned and
// moves the estimate with the slow factor.
type smoother struct {
	estimates []float64
	fast      float64
	slow      float64
	off       bool
}

func newSmoother(opts Options) *smoother {
	return &smoother{
		estimates: make([]float64, opts.MaxLen),
		fast:      opts.FastSmoothing,
		slow:      opts.SlowSmoothing,
		off:       opts.Exhaustive,
	}
}

func (s *smoother) admit(depth int, probability float64) bool {
	if s.off {
		return true
	}
	est := s.estimates[depth]
	if probability > est {
		s.estimates[depth] = s.fast*est + (1-s.fast)*probability
		return true
	}
	s.estimates[depth] = s.slow*est + (1-s.slow)*probability
	return false
}
