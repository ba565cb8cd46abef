package game

import "math/rand/v2"

// Rand is the randomness games draw from. Tests swap in a scripted source.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRand draws from the process-wide generator
var DefaultRand Rand = defaultRand{}

// SequenceRand replays fixed values, each taken modulo n. It wraps around when exhausted.
type SequenceRand struct {
	Values []int
	pos    int
}

func (s *SequenceRand) IntN(n int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v % n
}
