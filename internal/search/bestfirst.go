package search

import (
	"context"

	"github.com/trknhr/ghostguess/internal/pattern"
)

const cancelCheckInterval = 256

// BestFirst runs the single-threaded probability search. The work list is
// a stack seeded with the empty string; children are pushed in the order
// ProbableFollowers ranks them.
func BestFirst(ctx context.Context, set *pattern.Set, opts Options) (Result, error) {
	opts, err := opts.prepare(set)
	if err != nil {
		return Result{}, err
	}
	res := Result{Mode: ModeBestFirst}
	smooth := newSmoother(opts)

	stack := make([]Candidate, 0, 1024)
	stack = append(stack, Candidate{Probability: 1})
	for len(stack) > 0 {
		if res.Visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				opts.Observer.Finished(res)
				return res, err
			}
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res.Visited++

		if opts.Matcher.Match(current.Text) {
			res.Found = true
			res.Password = current.Text
			break
		}
		if current.depth >= opts.MaxLen {
			continue
		}
		if !smooth.admit(current.depth, current.Probability) {
			res.Pruned++
			opts.Observer.Pruned(current)
			continue
		}

		res.Expanded++
		opts.Observer.Expanded(current)
		for _, pf := range set.ProbableFollowers(current.Text) {
			stack = append(stack, current.extend(pf.Letter, pf.Probability))
		}
	}

	opts.Observer.Finished(res)
	return res, nil
}

// Significant runs the single-threaded search that expands each candidate
// only with its statistically significant followers. There is no
// likelihood pruning; the significance cutoff alone bounds the space.
func Significant(ctx context.Context, set *pattern.Set, opts Options) (Result, error) {
	opts, err := opts.prepare(set)
	if err != nil {
		return Result{}, err
	}
	res := Result{Mode: ModeSignificant}

	stack := make([]Candidate, 0, 1024)
	stack = append(stack, Candidate{Probability: 1})
	for len(stack) > 0 {
		if res.Visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				opts.Observer.Finished(res)
				return res, err
			}
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res.Visited++

		if opts.Matcher.Match(current.Text) {
			res.Found = true
			res.Password = current.Text
			break
		}
		if current.depth >= opts.MaxLen {
			continue
		}

		res.Expanded++
		opts.Observer.Expanded(current)
		for _, letter := range set.StatisticallySignificant(current.Text) {
			stack = append(stack, current.extend(letter, 1))
		}
	}

	opts.Observer.Finished(res)
	return res, nil
}
