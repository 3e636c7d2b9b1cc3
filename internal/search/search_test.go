package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trknhr/ghostguess/internal/match"
	"github.com/trknhr/ghostguess/internal/pattern"
)

var allModes = []Mode{ModeBestFirst, ModeParallel, ModeRouted}

func buildSet(t *testing.T, orders int, passwords ...string) *pattern.Set {
	t.Helper()
	set, err := pattern.NewFactory(orders, pattern.DefaultConfig()).FromPasswords(context.Background(), passwords)
	require.NoError(t, err)
	return set
}

func testOptions(mode Mode, target string, maxLen int) Options {
	opts := DefaultOptions()
	opts.Mode = mode
	opts.Matcher = match.Equal(target)
	opts.MaxLen = maxLen
	opts.Threads = 4
	opts.BatchSize = 16
	return opts
}

// expansionCounter records how often each candidate was expanded.
type expansionCounter struct {
	mu       sync.Mutex
	expanded map[string]int
	pruned   int
	finished int
	last     Result
}

func newExpansionCounter() *expansionCounter {
	return &expansionCounter{expanded: make(map[string]int)}
}

func (c *expansionCounter) Expanded(cand Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded[cand.Text]++
}

func (c *expansionCounter) Pruned(Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruned++
}

func (c *expansionCounter) Finished(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished++
	c.last = res
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeBestFirst, ModeSignificant, ModeParallel, ModeRouted} {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("breadth")
	assert.Error(t, err)
}

func TestRun_FindsReachableTarget(t *testing.T) {
	set := buildSet(t, 2, "aa", "ab", "aa")

	for _, mode := range allModes {
		t.Run(string(mode), func(t *testing.T) {
			res, err := Run(context.Background(), set, testOptions(mode, "aa", 2))
			require.NoError(t, err)
			assert.True(t, res.Found)
			assert.Equal(t, "aa", res.Password)
			assert.Equal(t, mode, res.Mode)
			assert.Positive(t, res.Visited)
		})
	}
}

func TestRun_ReportsNotFoundWhenExhausted(t *testing.T) {
	set := buildSet(t, 2, "aa", "ab", "aa")

	for _, mode := range append(allModes, ModeSignificant) {
		t.Run(string(mode), func(t *testing.T) {
			res, err := Run(context.Background(), set, testOptions(mode, "zz", 2))
			require.NoError(t, err)
			assert.False(t, res.Found)
			assert.Empty(t, res.Password)
		})
	}
}

func TestRun_MatchesBeforeLengthCheck(t *testing.T) {
	set := buildSet(t, 2, "abc")

	res, err := BestFirst(context.Background(), set, testOptions(ModeBestFirst, "", 1))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "", res.Password)
	assert.Equal(t, uint64(1), res.Visited)
	assert.Zero(t, res.Expanded)
}

func TestRun_ExhaustiveVisitsWholeSpaceOnce(t *testing.T) {
	// Eight letters and three levels: 1 + 8 + 64 + 512 candidates, of which
	// the first three levels are expanded.
	set := buildSet(t, 2, "abcdefgh")

	for _, mode := range allModes {
		t.Run(string(mode), func(t *testing.T) {
			counter := newExpansionCounter()
			opts := testOptions(mode, "zzz", 3)
			opts.Exhaustive = true
			opts.Observer = counter

			res, err := Run(context.Background(), set, opts)
			require.NoError(t, err)
			assert.False(t, res.Found)
			assert.Equal(t, uint64(585), res.Visited)
			assert.Equal(t, uint64(73), res.Expanded)
			assert.Zero(t, res.Pruned)

			assert.Len(t, counter.expanded, 73)
			for text, n := range counter.expanded {
				assert.LessOrEqual(t, n, 1, "candidate %q expanded more than once", text)
			}
			assert.Equal(t, 1, counter.finished)
			assert.Equal(t, res, counter.last)
		})
	}
}

func TestRun_ParallelNeverExpandsTwice(t *testing.T) {
	set := buildSet(t, 3, "password", "letmein", "sunshine", "dragon", "monkey", "qwerty", "shadow", "master")

	for _, mode := range []Mode{ModeParallel, ModeRouted} {
		t.Run(string(mode), func(t *testing.T) {
			counter := newExpansionCounter()
			opts := testOptions(mode, "not-in-the-model", 4)
			opts.Threads = 8
			opts.BatchSize = 4
			opts.Observer = counter

			res, err := Run(context.Background(), set, opts)
			require.NoError(t, err)
			assert.False(t, res.Found)
			assert.Greater(t, res.Visited, uint64(opts.BatchSize))
			assert.Equal(t, int(res.Expanded), len(counter.expanded))
			for text, n := range counter.expanded {
				assert.LessOrEqual(t, n, 1, "candidate %q expanded more than once", text)
			}
			assert.Equal(t, int(res.Pruned), counter.pruned)
		})
	}
}

func TestRouted_IdleWorkersWaitForSlowSiblings(t *testing.T) {
	set := buildSet(t, 2, "ab")

	opts := testOptions(ModeRouted, "", 2)
	opts.Exhaustive = true
	opts.IdleTimeout = time.Millisecond
	// The root is held well past the idle timeout while every other worker
	// has nothing to do.
	opts.Matcher = match.MatchFunc(func(candidate string) bool {
		if candidate == "" {
			time.Sleep(20 * time.Millisecond)
		}
		return false
	})

	res, err := Run(context.Background(), set, opts)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, uint64(7), res.Visited)
	assert.Equal(t, uint64(3), res.Expanded)
}

func TestOptions_DefaultIdleTimeout(t *testing.T) {
	set := buildSet(t, 2, "ab")
	opts := testOptions(ModeRouted, "ab", 2)
	opts.IdleTimeout = 0

	prepared, err := opts.prepare(set)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, prepared.IdleTimeout)
}

func TestSignificant_FollowsOnlyFrequentLetters(t *testing.T) {
	set := buildSet(t, 2, "ab", "ab", "ab", "cd", "ef")

	res, err := Significant(context.Background(), set, testOptions(ModeSignificant, "ab", 2))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "ab", res.Password)

	res, err = Significant(context.Background(), set, testOptions(ModeSignificant, "cd", 2))
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestRun_MissingAlphabetFailsBeforeWork(t *testing.T) {
	set, err := pattern.NewSet(2, pattern.DefaultConfig())
	require.NoError(t, err)
	set.Finalize()

	for _, mode := range append(allModes, ModeSignificant) {
		t.Run(string(mode), func(t *testing.T) {
			counter := newExpansionCounter()
			opts := testOptions(mode, "a", 2)
			opts.Observer = counter

			_, err := Run(context.Background(), set, opts)
			assert.True(t, errors.Is(err, pattern.ErrMissingModelData))
			assert.Zero(t, counter.finished)
			assert.Empty(t, counter.expanded)
		})
	}
}

func TestRun_RejectsBadOptions(t *testing.T) {
	set := buildSet(t, 2, "aa")

	opts := testOptions(ModeBestFirst, "aa", 0)
	_, err := Run(context.Background(), set, opts)
	assert.Error(t, err)

	opts = testOptions(ModeBestFirst, "aa", 2)
	opts.Matcher = nil
	_, err = Run(context.Background(), set, opts)
	assert.Error(t, err)

	opts = testOptions(ModeBestFirst, "aa", 2)
	opts.FastSmoothing = 1
	_, err = Run(context.Background(), set, opts)
	assert.Error(t, err)

	_, err = Run(context.Background(), nil, testOptions(ModeBestFirst, "aa", 2))
	assert.Error(t, err)

	_, err = Run(context.Background(), set, testOptions("sideways", "aa", 2))
	assert.Error(t, err)
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	set := buildSet(t, 2, "abcdefgh")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, mode := range append(allModes, ModeSignificant) {
		t.Run(string(mode), func(t *testing.T) {
			opts := testOptions(mode, "zzzzzz", 6)
			opts.Exhaustive = true

			res, err := Run(ctx, set, opts)
			assert.ErrorIs(t, err, context.Canceled)
			assert.False(t, res.Found)
		})
	}
}

func TestSmoother_ExpandsAboveEstimate(t *testing.T) {
	s := newSmoother(Options{MaxLen: 2, FastSmoothing: 0.9, SlowSmoothing: 0.7})

	fast := func(est, p float64) float64 { return 0.9*est + (1-0.9)*p }
	slow := func(est, p float64) float64 { return 0.7*est + (1-0.7)*p }

	assert.True(t, s.admit(1, 0.5))
	est := fast(0, 0.5)
	assert.InDelta(t, est, s.estimates[1], 1e-12)

	assert.False(t, s.admit(1, 0.04))
	est = slow(est, 0.04)
	assert.InDelta(t, est, s.estimates[1], 1e-12)

	assert.False(t, s.admit(1, 0.01))
	est = slow(est, 0.01)
	assert.InDelta(t, est, s.estimates[1], 1e-12)

	assert.True(t, s.admit(1, 0.2))
	assert.InDelta(t, fast(est, 0.2), s.estimates[1], 1e-12)

	assert.Zero(t, s.estimates[0])
}

func TestSmoother_ExhaustiveAdmitsEverything(t *testing.T) {
	s := newSmoother(Options{MaxLen: 1, FastSmoothing: 0.9, SlowSmoothing: 0.7, Exhaustive: true})
	assert.True(t, s.admit(0, 0))
	assert.True(t, s.admit(0, 0))
}
