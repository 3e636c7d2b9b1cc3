package pattern

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func newTestSet(t *testing.T, orders int) *Set {
	t.Helper()
	set, err := NewSet(orders, DefaultConfig())
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	return set
}

func mustInsert(t *testing.T, set *Set, order int, suffix string, letter rune, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if err := set.Insert(order, suffix, letter); err != nil {
			t.Fatalf("Insert(%d, %q, %q) failed: %v", order, suffix, letter, err)
		}
	}
}

func assertTreeInvariants(t *testing.T, set *Set) {
	t.Helper()
	for _, tree := range set.Trees() {
		var sum uint64
		for _, suffix := range tree.Suffixes() {
			seen := map[rune]bool{}
			for _, f := range tree.Followers(suffix) {
				if seen[f.Letter] {
					t.Errorf("order %d suffix %q has duplicate follower %q", tree.Order(), suffix, f.Letter)
				}
				seen[f.Letter] = true
				sum += uint64(f.Count)
			}
		}
		if sum != tree.TotalFollowerCount() {
			t.Errorf("order %d: total %d, sum of counts %d", tree.Order(), tree.TotalFollowerCount(), sum)
		}
	}
}

func TestNewSet_RejectsBadOrders(t *testing.T) {
	if _, err := NewSet(0, DefaultConfig()); err == nil {
		t.Error("expected error for zero orders")
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"min order outside the set", func(c *Config) { c.MinOrder = 3 }},
		{"negative branch base", func(c *Config) { c.BranchBase = -120 }},
		{"negative cutoff mass", func(c *Config) { c.CutoffMass = -0.5 }},
		{"cutoff mass of one", func(c *Config) { c.CutoffMass = 1 }},
		{"cutoff mass above one", func(c *Config) { c.CutoffMass = 1.5 }},
		{"no significant orders", func(c *Config) { c.SignificantOrders = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := NewSet(3, cfg); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.BranchBase = 0
	cfg.CutoffMass = 0
	if _, err := NewSet(3, cfg); err != nil {
		t.Errorf("zero branch base and cutoff mass should be accepted: %v", err)
	}
}

func TestSet_InsertCountSaturates(t *testing.T) {
	set := newTestSet(t, 2)
	records := []struct {
		order  int
		suffix string
		letter rune
		count  uint32
	}{
		{0, "", 'a', math.MaxUint32 - 1},
		{0, "", 'a', 5},
		{0, "", 'b', 2},
		{1, "a", 'b', math.MaxUint32},
		{1, "a", 'b', math.MaxUint32},
	}
	for _, r := range records {
		if err := set.InsertCount(r.order, r.suffix, r.letter, r.count); err != nil {
			t.Fatalf("InsertCount failed: %v", err)
		}
	}

	assertTreeInvariants(t, set)

	want := []Follower{{Letter: 'a', Count: math.MaxUint32}, {Letter: 'b', Count: 2}}
	if got := set.Tree(0).Followers(""); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected order 0 followers: %#v", got)
	}
	if got := set.Tree(1).TotalFollowerCount(); got != math.MaxUint32 {
		t.Errorf("order 1 total = %d, want %d", got, uint64(math.MaxUint32))
	}
}

func TestSet_InsertKeepsTotalsAndUniqueLetters(t *testing.T) {
	set := newTestSet(t, 3)
	mustInsert(t, set, 0, "", 'a', 3)
	mustInsert(t, set, 0, "", 'b', 1)
	mustInsert(t, set, 1, "a", 'b', 2)
	mustInsert(t, set, 1, "a", 'a', 1)
	mustInsert(t, set, 2, "ab", 'a', 1)
	if err := set.InsertCount(2, "ab", 'a', 4); err != nil {
		t.Fatalf("InsertCount failed: %v", err)
	}

	assertTreeInvariants(t, set)

	if got := set.Tree(2).Followers("ab"); !reflect.DeepEqual(got, []Follower{{Letter: 'a', Count: 5}}) {
		t.Errorf("unexpected followers for ab: %#v", got)
	}
	if got := set.Tree(1).TotalFollowerCount(); got != 3 {
		t.Errorf("order 1 total = %d, want 3", got)
	}
}

func TestSet_InsertRejectsInvariantViolations(t *testing.T) {
	set := newTestSet(t, 2)

	tests := []struct {
		name   string
		order  int
		suffix string
	}{
		{"suffix too long", 1, "ab"},
		{"suffix too short", 1, ""},
		{"order out of range", 2, "ab"},
		{"negative order", -1, ""},
	}
	for _, tt := range tests {
		err := set.Insert(tt.order, tt.suffix, 'x')
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("%s: expected ErrInvariantViolation, got %v", tt.name, err)
		}
	}
	for _, tree := range set.Trees() {
		if tree.TotalFollowerCount() != 0 || tree.Len() != 0 {
			t.Errorf("rejected insert changed order %d", tree.Order())
		}
	}
}

func TestSet_InsertCountsRunesNotBytes(t *testing.T) {
	set := newTestSet(t, 3)
	if err := set.Insert(2, "ñü", 'ß'); err != nil {
		t.Fatalf("expected two-rune suffix to fit order 2: %v", err)
	}
}

func TestSet_FinalizeFreezes(t *testing.T) {
	set := newTestSet(t, 1)
	mustInsert(t, set, 0, "", 'a', 1)
	set.Finalize()
	if err := set.Insert(0, "", 'a'); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected insert into finalized set to fail, got %v", err)
	}
}

func TestSet_FinalizeSortsFollowersByCount(t *testing.T) {
	set := newTestSet(t, 1)
	mustInsert(t, set, 0, "", 'c', 1)
	mustInsert(t, set, 0, "", 'b', 2)
	mustInsert(t, set, 0, "", 'a', 1)
	mustInsert(t, set, 0, "", 'd', 5)
	set.Finalize()

	alphabet, err := set.Alphabet()
	if err != nil {
		t.Fatalf("Alphabet failed: %v", err)
	}
	if string(alphabet) != "dbac" {
		t.Errorf("alphabet order = %q, want %q", string(alphabet), "dbac")
	}
}

func TestSet_AlphabetMissing(t *testing.T) {
	set := newTestSet(t, 2)
	set.Finalize()
	if _, err := set.Alphabet(); !errors.Is(err, ErrMissingModelData) {
		t.Errorf("expected ErrMissingModelData, got %v", err)
	}
	if got := set.ProbableFollowers("a"); got != nil {
		t.Errorf("expected no followers without an alphabet, got %#v", got)
	}
}

func TestSet_ProbableFollowersRanksByBlendedProbability(t *testing.T) {
	set := buildSet(t, 2, "aa", "ab", "aa")

	got := set.ProbableFollowers("a")
	if len(got) != 2 {
		t.Fatalf("expected 2 followers, got %#v", got)
	}
	if got[0].Letter != 'a' || got[1].Letter != 'b' {
		t.Fatalf("expected a ranked above b, got %#v", got)
	}
	// order 0: a 5/6, b 1/6; order 1 after "a": a 2/3, b 1/3; two orders.
	assertClose(t, got[0].Probability, (5.0/6+2.0/3)/2)
	assertClose(t, got[1].Probability, (1.0/6+1.0/3)/2)
}

func TestSet_ProbableFollowersSumsToAtMostOne(t *testing.T) {
	set := buildSet(t, 3, "password", "passw0rd", "letmein", "dragon", "monkey")

	for _, prefix := range []string{"", "p", "pa", "xyz", "mon"} {
		var sum float64
		for _, pf := range set.ProbableFollowers(prefix) {
			if pf.Probability < 0 || pf.Probability > 1 {
				t.Errorf("prefix %q: probability %v out of range", prefix, pf.Probability)
			}
			sum += pf.Probability
		}
		if sum > 1+1e-9 {
			t.Errorf("prefix %q: probabilities sum to %v", prefix, sum)
		}
	}

	var sum float64
	for _, pf := range set.ProbableFollowers("") {
		sum += pf.Probability
	}
	assertClose(t, sum, 1)
}

func TestSet_ProbableFollowersBranchingBound(t *testing.T) {
	alphabet := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	set := buildSet(t, 4, alphabet)

	prev := math.MaxInt
	for length := 0; length < 10; length++ {
		prefix := alphabet[:length]
		got := len(set.ProbableFollowers(prefix))
		bound := 60/(length+1) + 1
		if got > bound {
			t.Errorf("length %d: %d followers exceeds bound %d", length, got, bound)
		}
		if got > prev {
			t.Errorf("length %d: %d followers, more than %d at shorter length", length, got, prev)
		}
		prev = got
	}
	if got := len(set.ProbableFollowers("")); got != 61 {
		t.Errorf("empty prefix: got %d followers, want 61", got)
	}
}

func TestSet_ProbableFollowersTiesKeepAlphabetOrder(t *testing.T) {
	set := buildSet(t, 1, "ab", "ba")

	got := set.ProbableFollowers("")
	want := []ProbableFollower{{Letter: 'a', Probability: 0.5}, {Letter: 'b', Probability: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProbableFollowers mismatch.\nExpected: %#v\nGot:      %#v", want, got)
	}
}

func TestSet_ProbableFollowersKeepsUnseenLetters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOrder = 1
	set, err := NewFactory(2, cfg).FromPasswords(t.Context(), []string{"ab", "cc"})
	if err != nil {
		t.Fatalf("FromPasswords failed: %v", err)
	}

	got := set.ProbableFollowers("a")
	if len(got) != 3 {
		t.Fatalf("expected every alphabet letter, got %#v", got)
	}
	if got[0].Letter != 'b' {
		t.Errorf("expected b first, got %#v", got)
	}
	for _, pf := range got[1:] {
		if pf.Probability != 0 {
			t.Errorf("expected unseen letter %q to have probability 0, got %v", pf.Letter, pf.Probability)
		}
	}
}

func TestSet_StatisticallySignificant(t *testing.T) {
	set := newTestSet(t, 2)
	mustInsert(t, set, 0, "", 'a', 3)
	mustInsert(t, set, 0, "", 'b', 1)
	mustInsert(t, set, 0, "", 'c', 1)
	mustInsert(t, set, 0, "", 'd', 1)
	mustInsert(t, set, 1, "x", 'a', 5)
	mustInsert(t, set, 1, "x", 'b', 1)
	mustInsert(t, set, 1, "x", 'c', 1)
	mustInsert(t, set, 1, "y", 'd', 1)
	set.Finalize()

	if got := set.Tree(1).CutoffCount(); got != 1 {
		t.Fatalf("order 1 cutoff = %d, want 1", got)
	}
	if got := set.StatisticallySignificant("zx"); string(got) != "a" {
		t.Errorf("StatisticallySignificant(zx) = %q, want %q", string(got), "a")
	}
	if got := set.StatisticallySignificant(""); string(got) != "a" {
		t.Errorf("StatisticallySignificant(\"\") = %q, want %q", string(got), "a")
	}
	if got := set.StatisticallySignificant("y"); string(got) != "a" {
		t.Errorf("StatisticallySignificant(y) = %q, want %q", string(got), "a")
	}
}

func TestTree_DistributionAndCutoff(t *testing.T) {
	set := newTestSet(t, 2)
	mustInsert(t, set, 1, "a", 'a', 1)
	mustInsert(t, set, 1, "b", 'a', 2)
	mustInsert(t, set, 1, "c", 'a', 3)
	mustInsert(t, set, 1, "d", 'a', 4)
	tree := set.Tree(1)

	want := []CountProbability{{1, 0.25}, {2, 0.25}, {3, 0.25}, {4, 0.25}}
	if got := tree.Distribution(); !reflect.DeepEqual(got, want) {
		t.Errorf("Distribution mismatch.\nExpected: %#v\nGot:      %#v", want, got)
	}
	if got := tree.Cutoff(0.5); got != 3 {
		t.Errorf("Cutoff(0.5) = %d, want 3", got)
	}
	if got := tree.Cutoff(1.0); got != 4 {
		t.Errorf("Cutoff(1.0) = %d, want 4", got)
	}
	if got := set.Tree(0).Cutoff(0.5); got != 0 {
		t.Errorf("empty tree cutoff = %d, want 0", got)
	}
}

func TestSet_Stats(t *testing.T) {
	set := buildSet(t, 2, "aa", "ab", "aa")
	want := []OrderStats{
		{Order: 0, Suffixes: 1, Followers: 2, Total: 6, Cutoff: set.Tree(0).CutoffCount()},
		{Order: 1, Suffixes: 1, Followers: 2, Total: 3, Cutoff: set.Tree(1).CutoffCount()},
	}
	if got := set.Stats(); !reflect.DeepEqual(got, want) {
		t.Errorf("Stats mismatch.\nExpected: %#v\nGot:      %#v", want, got)
	}
}

func assertClose(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}
