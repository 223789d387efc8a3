package deck

import (
	rand "math/rand/v2"
)

// Deck holds a fixed multiset of ranks and deals them out in shuffled order.
// Dealing past the end of the deck triggers a full reshuffle of the whole
// multiset, so Deal never fails on a non-empty deck.
type Deck struct {
	cards  []Rank
	cursor int
	top    Rank
	rng    *rand.Rand
}

// DoubleTen returns the ranks for the standard variant: two copies each of
// ranks 1 through 10.
func DoubleTen() []Rank {
	cards := make([]Rank, 0, 20)
	for copies := 0; copies < 2; copies++ {
		for r := Rank(1); r <= 10; r++ {
			cards = append(cards, r)
		}
	}
	return cards
}

// WithJoker returns the ranks for the joker variant: one copy each of ranks
// 1 through 13 plus a single joker.
func WithJoker() []Rank {
	cards := make([]Rank, 0, 14)
	for r := Rank(1); r <= 13; r++ {
		cards = append(cards, r)
	}
	return append(cards, Joker)
}

// New creates a deck from the given multiset of ranks and shuffles it.
// The multiset must be non-empty.
func New(rng *rand.Rand, ranks []Rank) *Deck {
	if len(ranks) == 0 {
		panic("deck: empty rank multiset")
	}
	d := &Deck{
		cards: append([]Rank(nil), ranks...),
		rng:   rng,
		top:   topRank(ranks),
	}
	d.Shuffle()
	return d
}

func topRank(ranks []Rank) Rank {
	top := NoCard
	for _, r := range ranks {
		if r != Joker && r > top {
			top = r
		}
	}
	return top
}

// Shuffle produces a uniformly random permutation of the full multiset and
// resets the deal cursor.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.cursor = 0
}

// Deal returns the next card, reshuffling the entire multiset first if the
// deck is exhausted.
func (d *Deck) Deal() Rank {
	if d.cursor >= len(d.cards) {
		d.Shuffle()
	}
	card := d.cards[d.cursor]
	d.cursor++
	return card
}

// Remaining returns the number of undealt cards before the next reshuffle.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}

// Size returns the total multiset size.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Top returns the highest numeric rank in the multiset. This is the rank the
// joker beats, and the default penalty rank for folding.
func (d *Deck) Top() Rank {
	return d.top
}

// Compare orders two ranks using this deck's top rank for the joker rule.
func (d *Deck) Compare(a, b Rank) int {
	return Compare(a, b, d.top)
}
