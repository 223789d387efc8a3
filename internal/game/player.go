package game

import (
	"github.com/lox/indianpoker/internal/deck"
)

// Player is the per-seat ledger entry for one participant. Chips are only
// mutated by the player's own actions and by settlement payouts.
type Player struct {
	Seat       int
	Name       string
	Chips      int
	Card       deck.Rank // NoCard outside a hand; hidden from the owner
	Bet        int       // chips committed to the pot this betting round
	Folded     bool
	AllIn      bool
	LastAction Action
}

// Active reports whether the player can still be asked to act this round.
func (p *Player) Active() bool {
	return !p.Folded && !p.AllIn
}

// Pending reports whether the player still owes an action since the last
// bet or raise.
func (p *Player) Pending() bool {
	return p.Active() && p.LastAction == None
}

// resetForHand clears all per-hand fields ahead of the next deal.
func (p *Player) resetForHand() {
	p.Card = deck.NoCard
	p.Bet = 0
	p.Folded = false
	p.AllIn = false
	p.LastAction = None
}
