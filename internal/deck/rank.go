package deck

import "strconv"

// Rank is the face value of a card. Indian poker cards carry no suit; the
// only thing that matters at showdown is the rank ordering.
type Rank int

// NoCard marks a seat that has not been dealt this hand.
const NoCard Rank = 0

// Joker is the wraparound card used by the joker preset: it beats the top
// numeric rank of the deck and loses to every other card.
const Joker Rank = -1

func (r Rank) String() string {
	switch r {
	case NoCard:
		return "-"
	case Joker:
		return "Jo"
	default:
		return strconv.Itoa(int(r))
	}
}

// Compare orders two ranks given the deck's top numeric rank. It returns a
// positive value if a beats b, negative if b beats a, and zero on a tie.
// The joker exception is applied symmetrically here so callers never need to
// special-case ranks themselves.
func Compare(a, b, top Rank) int {
	if a == b {
		return 0
	}
	if a == Joker {
		if b == top {
			return 1
		}
		return -1
	}
	if b == Joker {
		if a == top {
			return -1
		}
		return 1
	}
	return int(a) - int(b)
}
