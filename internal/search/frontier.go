package search

import "sync"

// Frontier is the candidate work list shared by parallel workers. Its
// methods are the only way to change it and each holds the lock for a
// structural change only; expanding candidates happens outside.
//
// Take and Return additionally track how many batches are out with
// workers, so an empty frontier is only reported as drained once nobody can
// add to it anymore.
type Frontier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Candidate
	active int
	closed bool
}

func NewFrontier(seed ...Candidate) *Frontier {
	f := &Frontier{items: append(make([]Candidate, 0, 1024), seed...)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push adds c on top. It is a no-op on a closed frontier.
func (f *Frontier) Push(c Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.items = append(f.items, c)
	f.cond.Broadcast()
}

// Pop removes the newest candidate.
func (f *Frontier) Pop() (Candidate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || len(f.items) == 0 {
		return Candidate{}, false
	}
	c := f.items[len(f.items)-1]
	f.items = f.items[:len(f.items)-1]
	return c, true
}

// Split removes and returns up to n of the newest candidates, oldest first.
func (f *Frontier) Split(n int) []Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	return f.split(n)
}

func (f *Frontier) split(n int) []Candidate {
	n = min(n, len(f.items))
	if n <= 0 {
		return nil
	}
	cut := len(f.items) - n
	batch := make([]Candidate, n)
	copy(batch, f.items[cut:])
	clear(f.items[cut:])
	f.items = f.items[:cut]
	return batch
}

// Append adds cs on top, last element newest. It is a no-op on a closed
// frontier.
func (f *Frontier) Append(cs []Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || len(cs) == 0 {
		return
	}
	f.items = append(f.items, cs...)
	f.cond.Broadcast()
}

// Take blocks until it can hand out a batch of up to n candidates. It
// returns false once the frontier is closed, or once it is empty with no
// batch outstanding; the latter closes it. Every successful Take must be
// followed by exactly one Return.
func (f *Frontier) Take(n int) ([]Candidate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.closed {
			return nil, false
		}
		if len(f.items) > 0 {
			f.active++
			return f.split(n), true
		}
		if f.active == 0 {
			f.closed = true
			f.cond.Broadcast()
			return nil, false
		}
		f.cond.Wait()
	}
}

// Return hands back the children produced from a batch obtained by Take.
func (f *Frontier) Return(children []Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	if !f.closed {
		f.items = append(f.items, children...)
	}
	f.cond.Broadcast()
}

// Close discards the remaining candidates and wakes every waiter. Closing
// twice is fine.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.items = nil
	f.cond.Broadcast()
}

func (f *Frontier) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
