package pattern

import (
	"math"
	"sort"
)

// Follower counts how often Letter was seen right after a suffix.
type Follower struct {
	Letter rune
	Count  uint32
}

// CountProbability is one point of a tree's count distribution: the share of
// follower entries whose count equals Count.
type CountProbability struct {
	Count       uint32
	Probability float64
}

// Tree is an order-k Markov table mapping a k-rune suffix to its followers.
type Tree struct {
	order     int
	followers map[string][]Follower
	total     uint64
	cutoff    uint32
}

func newTree(order int) *Tree {
	return &Tree{
		order:     order,
		followers: make(map[string][]Follower),
	}
}

func (t *Tree) Order() int {
	return t.order
}

// Followers returns the followers of suffix. The slice must not be modified.
func (t *Tree) Followers(suffix string) []Follower {
	return t.followers[suffix]
}

// Suffixes returns every suffix key in sorted order.
func (t *Tree) Suffixes() []string {
	keys := make([]string, 0, len(t.followers))
	for k := range t.followers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len is the number of suffix keys.
func (t *Tree) Len() int {
	return len(t.followers)
}

// TotalFollowerCount is the sum of every follower count in the tree.
func (t *Tree) TotalFollowerCount() uint64 {
	return t.total
}

// CutoffCount is the significance threshold cached by Set.Finalize.
func (t *Tree) CutoffCount() uint32 {
	return t.cutoff
}

// add raises the count of letter after suffix, saturating at
// math.MaxUint32. The total grows by what was actually added.
func (t *Tree) add(suffix string, letter rune, count uint32) {
	followers := t.followers[suffix]
	for i := range followers {
		if followers[i].Letter == letter {
			count = min(count, math.MaxUint32-followers[i].Count)
			followers[i].Count += count
			t.total += uint64(count)
			return
		}
	}
	t.total += uint64(count)
	if followers == nil {
		followers = make([]Follower, 0, 10)
	}
	t.followers[suffix] = append(followers, Follower{Letter: letter, Count: count})
}

// dropBelow removes followers whose count is under floor and suffixes left
// without followers. The total is kept in step.
func (t *Tree) dropBelow(floor uint32) {
	for suffix, followers := range t.followers {
		kept := followers[:0]
		for _, f := range followers {
			if f.Count < floor {
				t.total -= uint64(f.Count)
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) == 0 {
			delete(t.followers, suffix)
			continue
		}
		t.followers[suffix] = kept
	}
}

// sortFollowers orders every follower list by descending count, then letter.
func (t *Tree) sortFollowers() {
	for _, followers := range t.followers {
		sort.SliceStable(followers, func(i, j int) bool {
			if followers[i].Count != followers[j].Count {
				return followers[i].Count > followers[j].Count
			}
			return followers[i].Letter < followers[j].Letter
		})
	}
}

// Distribution returns, for each distinct follower count, the share of
// follower entries having it, ordered by count.
func (t *Tree) Distribution() []CountProbability {
	amounts := make(map[uint32]uint64)
	var entries uint64
	for _, followers := range t.followers {
		for _, f := range followers {
			amounts[f.Count]++
			entries++
		}
	}
	if entries == 0 {
		return nil
	}

	dist := make([]CountProbability, 0, len(amounts))
	for count, amount := range amounts {
		dist = append(dist, CountProbability{
			Count:       count,
			Probability: float64(amount) / float64(entries),
		})
	}
	sort.Slice(dist, func(i, j int) bool {
		return dist[i].Count < dist[j].Count
	})
	return dist
}

// Cutoff returns the smallest count whose cumulative probability in the
// distribution exceeds mass. An empty tree has cutoff 0.
func (t *Tree) Cutoff(mass float64) uint32 {
	dist := t.Distribution()
	if len(dist) == 0 {
		return 0
	}
	var cumulative float64
	for _, p := range dist {
		cumulative += p.Probability
		if cumulative > mass {
			return p.Count
		}
	}
	return dist[len(dist)-1].Count
}
