// Package estimate gives rough sizes of the candidate space a search may
// visit before it reaches a password of a given length.
package estimate

import (
	"fmt"
	"math"
	"time"
)

// DefaultRate is the number of candidates per second assumed when none is
// given.
const DefaultRate = 1_000_000

type Estimate struct {
	Length       int
	AlphabetSize int
	// Possibilities is the expected number of candidates tested.
	Possibilities float64
	// UpperBound is the largest number of candidates the ranked follower
	// lists allow, ignoring likelihood pruning.
	UpperBound float64
	Rate       float64
}

// Duration is the time needed to test Possibilities at Rate.
func (e Estimate) Duration() time.Duration {
	if e.Rate <= 0 {
		return 0
	}
	seconds := e.Possibilities / e.Rate
	if seconds > float64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

func (e Estimate) Minutes() float64 {
	if e.Rate <= 0 {
		return 0
	}
	return e.Possibilities / e.Rate / 60
}

// Compute estimates the search for a password of length runes over an
// alphabet of alphabetSize letters. Every position after the first is
// assumed to try half of the followers a prefix of that length is allowed.
func Compute(length, alphabetSize, branchBase int, rate float64) (Estimate, error) {
	if length < 1 {
		return Estimate{}, fmt.Errorf("length must be positive, got %d", length)
	}
	if alphabetSize < 1 {
		return Estimate{}, fmt.Errorf("alphabet size must be positive, got %d", alphabetSize)
	}
	if rate <= 0 {
		rate = DefaultRate
	}

	possibilities := float64(alphabetSize)
	for i := 1; i < length; i++ {
		possibilities *= patternPossibilities(i) / 2
	}
	return Estimate{
		Length:        length,
		AlphabetSize:  alphabetSize,
		Possibilities: possibilities,
		UpperBound:    UpperBound(length, alphabetSize, branchBase),
		Rate:          rate,
	}, nil
}

func patternPossibilities(length int) float64 {
	return 100 / float64(length+4)
}

// UpperBound counts the leaves of the candidate tree when every prefix of
// rune length l keeps min(alphabetSize, branchBase/(l+1)+1) children.
func UpperBound(length, alphabetSize, branchBase int) float64 {
	bound := 1.0
	for l := 0; l < length; l++ {
		bound *= float64(min(alphabetSize, branchBase/(l+1)+1))
	}
	return bound
}
