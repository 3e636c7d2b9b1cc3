package pattern

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Config holds the tunables of a Set. The defaults are empirical.
type Config struct {
	// MinOrder is the lowest order consulted by queries.
	MinOrder int
	// BranchBase drives the length-decaying fan-out BranchBase/(len+1)+1.
	BranchBase int
	// CutoffMass is the cumulative count probability a tree's cutoff must exceed.
	CutoffMass float64
	// SignificantOrders is how many of the highest usable orders
	// StatisticallySignificant consults.
	SignificantOrders int
	// DropSingletons removes count-1 followers from orders above zero when
	// the set is finalized.
	DropSingletons bool
}

func DefaultConfig() Config {
	return Config{
		MinOrder:          0,
		BranchBase:        60,
		CutoffMass:        0.5,
		SignificantOrders: 2,
	}
}

// Validate checks cfg against a set of the given number of orders.
func (c Config) Validate(orders int) error {
	if c.MinOrder < 0 || c.MinOrder >= orders {
		return fmt.Errorf("min order %d outside 0..%d", c.MinOrder, orders-1)
	}
	if c.BranchBase < 0 {
		return fmt.Errorf("branch base must not be negative, got %d", c.BranchBase)
	}
	if c.CutoffMass < 0 || c.CutoffMass >= 1 {
		return fmt.Errorf("cutoff mass must be in [0,1), got %v", c.CutoffMass)
	}
	if c.SignificantOrders < 1 {
		return fmt.Errorf("significant orders must be positive, got %d", c.SignificantOrders)
	}
	return nil
}

// ProbableFollower is a letter with the probability blended across orders.
type ProbableFollower struct {
	Letter      rune
	Probability float64
}

// OrderStats summarizes one tree.
type OrderStats struct {
	Order     int
	Suffixes  int
	Followers int
	Total     uint64
	Cutoff    uint32
}

// Set is the family of trees of orders 0..N-1. It is filled by a Factory or
// a decoder and finalized once; after Finalize it is read-only and safe to
// share between goroutines.
type Set struct {
	cfg       Config
	trees     []*Tree
	finalized bool
}

func NewSet(orders int, cfg Config) (*Set, error) {
	if orders < 1 {
		return nil, fmt.Errorf("pattern set needs at least one order, got %d", orders)
	}
	if err := cfg.Validate(orders); err != nil {
		return nil, err
	}
	trees := make([]*Tree, orders)
	for i := range trees {
		trees[i] = newTree(i)
	}
	return &Set{cfg: cfg, trees: trees}, nil
}

func (s *Set) Config() Config {
	return s.cfg
}

// Orders is the fixed number of trees.
func (s *Set) Orders() int {
	return len(s.trees)
}

func (s *Set) Tree(order int) *Tree {
	return s.trees[order]
}

func (s *Set) Trees() []*Tree {
	return s.trees
}

// Insert counts one occurrence of letter after suffix in tree order.
func (s *Set) Insert(order int, suffix string, letter rune) error {
	return s.InsertCount(order, suffix, letter, 1)
}

// InsertCount adds count occurrences of letter after suffix in tree order.
func (s *Set) InsertCount(order int, suffix string, letter rune, count uint32) error {
	if s.finalized {
		return fmt.Errorf("%w: insert into finalized set", ErrInvariantViolation)
	}
	if order < 0 || order >= len(s.trees) {
		return fmt.Errorf("%w: order %d outside 0..%d", ErrInvariantViolation, order, len(s.trees)-1)
	}
	if n := utf8.RuneCountInString(suffix); n != order {
		return fmt.Errorf("%w: suffix %q has length %d in tree of order %d", ErrInvariantViolation, suffix, n, order)
	}
	s.trees[order].add(suffix, letter, count)
	return nil
}

// Finalize sorts followers, caches cutoffs and freezes the set.
func (s *Set) Finalize() {
	if s.finalized {
		return
	}
	for _, tree := range s.trees {
		if s.cfg.DropSingletons && tree.order > 0 {
			tree.dropBelow(2)
		}
		tree.sortFollowers()
		tree.cutoff = tree.Cutoff(s.cfg.CutoffMass)
	}
	s.finalized = true
}

func (s *Set) Finalized() bool {
	return s.finalized
}

// Alphabet returns the followers of the empty suffix, most frequent first.
func (s *Set) Alphabet() ([]rune, error) {
	followers := s.trees[0].followers[""]
	if len(followers) == 0 {
		return nil, ErrMissingModelData
	}
	letters := make([]rune, len(followers))
	for i, f := range followers {
		letters[i] = f.Letter
	}
	return letters, nil
}

// BranchingFactor is the most followers ProbableFollowers returns for a
// prefix of the given rune length.
func (s *Set) BranchingFactor(length int) int {
	return s.cfg.BranchBase/(length+1) + 1
}

// ProbableFollowers blends every consulted order's evidence for what follows
// prefix. Each order contributes count/total divided by the number of
// orders consulted. All alphabet letters are present, unseen ones with
// probability 0. The list is ordered by descending probability, ties in
// alphabet order, and cut to BranchingFactor(len(prefix)).
func (s *Set) ProbableFollowers(prefix string) []ProbableFollower {
	alphabet, err := s.Alphabet()
	if err != nil {
		return nil
	}
	runes := []rune(prefix)

	probs := make(map[rune]float64, len(alphabet))
	letters := make([]rune, 0, len(alphabet))
	for _, letter := range alphabet {
		probs[letter] = 0
		letters = append(letters, letter)
	}

	lower := s.cfg.MinOrder
	upper := min(len(s.trees), len(runes)+1)
	if examined := upper - lower; examined > 0 {
		for k := lower; k < upper; k++ {
			tree := s.trees[k]
			if tree.total == 0 {
				continue
			}
			suffix := string(runes[len(runes)-k:])
			for _, f := range tree.followers[suffix] {
				if _, ok := probs[f.Letter]; !ok {
					letters = append(letters, f.Letter)
				}
				probs[f.Letter] += float64(f.Count) / float64(tree.total) / float64(examined)
			}
		}
	}

	result := make([]ProbableFollower, len(letters))
	for i, letter := range letters {
		result[i] = ProbableFollower{Letter: letter, Probability: probs[letter]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Probability > result[j].Probability
	})

	if limit := s.BranchingFactor(len(runes)); limit < len(result) {
		result = result[:limit]
	}
	return result
}

// StatisticallySignificant returns the letters that follow prefix more often
// than the cutoff count of their tree, consulting the highest usable orders
// first. Each letter appears once.
func (s *Set) StatisticallySignificant(prefix string) []rune {
	runes := []rune(prefix)
	upper := min(len(s.trees), len(runes)+1)
	lower := max(s.cfg.MinOrder, upper-s.cfg.SignificantOrders)

	var letters []rune
	seen := make(map[rune]struct{})
	for k := upper - 1; k >= lower; k-- {
		tree := s.trees[k]
		suffix := string(runes[len(runes)-k:])
		for _, f := range tree.followers[suffix] {
			if f.Count <= tree.cutoff {
				continue
			}
			if _, ok := seen[f.Letter]; ok {
				continue
			}
			seen[f.Letter] = struct{}{}
			letters = append(letters, f.Letter)
		}
	}
	return letters
}

func (s *Set) Stats() []OrderStats {
	stats := make([]OrderStats, len(s.trees))
	for i, tree := range s.trees {
		followers := 0
		for _, fs := range tree.followers {
			followers += len(fs)
		}
		stats[i] = OrderStats{
			Order:     i,
			Suffixes:  tree.Len(),
			Followers: followers,
			Total:     tree.total,
			Cutoff:    tree.cutoff,
		}
	}
	return stats
}
