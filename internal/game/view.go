package game

import (
	"github.com/lox/indianpoker/internal/deck"
)

// PlayerView is the externally visible state of one seat.
type PlayerView struct {
	Seat       int       `json:"seat"`
	Name       string    `json:"name"`
	Chips      int       `json:"chips"`
	Bet        int       `json:"bet"`
	Folded     bool      `json:"folded"`
	AllIn      bool      `json:"allIn"`
	LastAction string    `json:"lastAction"`
	Card       deck.Rank `json:"card"` // NoCard when hidden from the viewer
}

// View is a read-only snapshot of the table for one viewer.
type View struct {
	HandID     string       `json:"handId"`
	HandNum    int          `json:"handNum"`
	Phase      string       `json:"phase"`
	Pot        int          `json:"pot"`
	CurrentBet int          `json:"currentBet"`
	Turn       int          `json:"turn"`
	TurnName   string       `json:"turnName,omitempty"`
	Players    []PlayerView `json:"players"`
}

// SpectatorSeat produces a View with every card visible.
const SpectatorSeat = -1

// View returns a snapshot as seen from viewerSeat. The viewer's own card is
// always masked to NoCard — that is the game — while every other seat's card
// is visible. Pass SpectatorSeat to see everything.
func (g *Game) View(viewerSeat int) View {
	v := View{
		HandID:     g.handID,
		HandNum:    g.handNum,
		Phase:      g.phase.String(),
		Pot:        g.pot,
		CurrentBet: g.currentBet,
		Turn:       g.turn,
		Players:    make([]PlayerView, len(g.players)),
	}
	if g.turn >= 0 {
		v.TurnName = g.players[g.turn].Name
	}
	for i, p := range g.players {
		card := p.Card
		if i == viewerSeat {
			card = deck.NoCard
		}
		v.Players[i] = PlayerView{
			Seat:       p.Seat,
			Name:       p.Name,
			Chips:      p.Chips,
			Bet:        p.Bet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			LastAction: p.LastAction.String(),
			Card:       card,
		}
	}
	return v
}

// ToCall returns the outstanding obligation for a seat this round.
func (g *Game) ToCall(seat int) int {
	if seat < 0 || seat >= len(g.players) {
		return 0
	}
	if toCall := g.currentBet - g.players[seat].Bet; toCall > 0 {
		return toCall
	}
	return 0
}

// SeatOf returns the seat index for a player name, or -1.
func (g *Game) SeatOf(name string) int {
	for _, p := range g.players {
		if p.Name == name {
			return p.Seat
		}
	}
	return -1
}
