package game

import (
	"fmt"

	"github.com/lox/indianpoker/internal/deck"
)

// Deck presets selectable per table.
const (
	DeckDoubleTen = "double-ten" // two copies each of ranks 1..10
	DeckJoker     = "joker"      // single copies of 1..13 plus a joker
)

// Rules holds the table-configurable parameters of the game. The fold
// penalty is a fraction of the folder's remaining stack, rounded up, charged
// when the folded card is the penalty rank.
type Rules struct {
	Ante          int
	StartingChips int
	DeckPreset    string
	PenaltyRank   deck.Rank // NoCard means "top rank of the deck"
	PenaltyNum    int
	PenaltyDen    int
	MaxPlayers    int
}

// DefaultRules returns the standard variant: 1-chip ante, 20-chip stacks,
// double-ten deck, half-stack penalty rounded up on folding the top rank.
func DefaultRules() Rules {
	return Rules{
		Ante:          1,
		StartingChips: 20,
		DeckPreset:    DeckDoubleTen,
		PenaltyNum:    1,
		PenaltyDen:    2,
		MaxPlayers:    6,
	}
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	if r.Ante <= 0 {
		return fmt.Errorf("ante must be positive, got %d", r.Ante)
	}
	if r.StartingChips <= r.Ante {
		return fmt.Errorf("starting chips (%d) must exceed the ante (%d)", r.StartingChips, r.Ante)
	}
	if r.DeckPreset != DeckDoubleTen && r.DeckPreset != DeckJoker {
		return fmt.Errorf("unknown deck preset %q", r.DeckPreset)
	}
	if r.PenaltyNum < 0 || r.PenaltyDen <= 0 || r.PenaltyNum > r.PenaltyDen {
		return fmt.Errorf("penalty fraction %d/%d out of range", r.PenaltyNum, r.PenaltyDen)
	}
	if r.MaxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2, got %d", r.MaxPlayers)
	}
	return nil
}

// ranks returns the deck multiset for the configured preset.
func (r Rules) ranks() []deck.Rank {
	if r.DeckPreset == DeckJoker {
		return deck.WithJoker()
	}
	return deck.DoubleTen()
}

// penalty returns the chips charged when folding the penalty rank with the
// given stack: ceil(chips * num/den).
func (r Rules) penalty(chips int) int {
	if r.PenaltyNum == 0 {
		return 0
	}
	return (chips*r.PenaltyNum + r.PenaltyDen - 1) / r.PenaltyDen
}
