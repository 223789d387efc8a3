package game

import (
	"time"

	"github.com/lox/indianpoker/internal/deck"
)

// runShowdown compares the visible cards of everyone still in the hand,
// breaking ties by dealing fresh cards to the tied seats until a unique
// maximum emerges, then settles the pot.
func (g *Game) runShowdown() {
	g.phase = Showdown

	live := g.nonFolded()
	if len(live) == 0 {
		// Fold-out short-circuits at exactly one remaining player, so an
		// empty showdown means the turn logic is broken.
		panic("game: showdown reached with no live players")
	}

	winner, redraws := g.resolveWinner(live)

	cards := make(map[int]deck.Rank, len(live))
	for _, p := range live {
		cards[p.Seat] = p.Card
	}

	// A short all-in caps what the hand could actually contest at the
	// smallest live contribution; everything committed beyond that goes back
	// to whoever paid it, not to the winner.
	minContribution := live[0].Bet
	for _, p := range live[1:] {
		if p.Bet < minContribution {
			minContribution = p.Bet
		}
	}
	var refunds map[int]int
	for _, p := range live {
		if excess := p.Bet - minContribution; excess > 0 {
			if refunds == nil {
				refunds = make(map[int]int)
			}
			refunds[p.Seat] = excess
		}
	}

	g.awardPot(winner, cards, refunds, redraws)
}

// resolveWinner returns the unique holder of the best card among live
// players, dealing replacement cards to tied seats until the tie breaks.
// Implemented as a loop over a shrinking tie set; the deck reshuffles itself
// if redraws exhaust it.
func (g *Game) resolveWinner(live []*Player) (*Player, int) {
	tied := live
	redraws := 0
	for {
		best := g.bestCardHolders(tied)
		if len(best) == 1 {
			return best[0], redraws
		}

		redraws++
		for _, p := range best {
			p.Card = g.deck.Deal()
			g.bus.Publish(CardDealtEvent{
				HandID: g.handID,
				Seat:   p.Seat,
				Name:   p.Name,
				Card:   p.Card,
				Redraw: true,
				ts:     time.Now(),
			})
		}
		tied = best
	}
}

// bestCardHolders returns every player in the set holding the maximum card
// under the deck's rank ordering (joker rule included).
func (g *Game) bestCardHolders(players []*Player) []*Player {
	best := []*Player{players[0]}
	for _, p := range players[1:] {
		switch cmp := g.deck.Compare(p.Card, best[0].Card); {
		case cmp > 0:
			best = []*Player{p}
		case cmp == 0:
			best = append(best, p)
		}
	}
	return best
}
