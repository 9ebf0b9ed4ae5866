package views

import "math/rand/v2"

// authorPool is the set of display names shown on post cards.
var authorPool = []string{"Whales", "Steven", "Julia", "Bonnie", "Ethan"}

const rosterSize = 8

// Roster is a fixed sequence of author names assigned to cards by position.
// It is drawn once at startup so every request shows the same names.
type Roster []string

// NewRoster draws rosterSize names from the pool using rng. Pass a seeded
// generator for reproducible output.
func NewRoster(rng *rand.Rand) Roster {
	r := make(Roster, rosterSize)
	for i := range r {
		r[i] = authorPool[rng.IntN(len(authorPool))]
	}
	return r
}

// For returns the name for the card at index i.
func (r Roster) For(i int) string {
	if len(r) == 0 {
		return ""
	}
	return r[i%len(r)]
}
