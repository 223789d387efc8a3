package game

import (
	"fmt"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/indianpoker/internal/deck"
	"github.com/lox/indianpoker/internal/gameid"
)

// Game is the aggregate for one table: the pot, the deck, the turn pointer
// and the per-seat ledger entries. It is a strict single-writer state
// machine — every action is validated, applied and settled to completion
// before the next one is accepted, and callers are responsible for
// serialising access (the server holds one lock per service).
type Game struct {
	rules   Rules
	players []*Player
	deck    *deck.Deck
	rng     *rand.Rand
	logger  *log.Logger
	bus     EventBus
	ledger  Ledger

	phase      Phase
	pot        int
	currentBet int // highest cumulative per-player contribution this round
	turn       int // seat whose action is awaited; -1 when undefined
	handID     string
	handNum    int
	supply     int // total chips on the table, fixed at Start
	lastWinner int // first to act next hand; -1 before the first hand
}

// Option configures a Game.
type Option func(*Game)

// WithLedger attaches the external value ledger credited on termination.
func WithLedger(l Ledger) Option {
	return func(g *Game) { g.ledger = l }
}

// WithEventBus uses the provided bus instead of a fresh one.
func WithEventBus(bus EventBus) Option {
	return func(g *Game) { g.bus = bus }
}

// New creates an empty table with the given rules. Rules must already be
// validated.
func New(logger *log.Logger, rng *rand.Rand, rules Rules, opts ...Option) *Game {
	g := &Game{
		rules:      rules,
		rng:        rng,
		logger:     logger.WithPrefix("game"),
		bus:        NewEventBus(),
		ledger:     NopLedger{},
		phase:      Waiting,
		turn:       -1,
		lastWinner: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EventBus returns the bus game events are published on.
func (g *Game) EventBus() EventBus { return g.bus }

// Phase returns the current hand phase.
func (g *Game) Phase() Phase { return g.phase }

// Pot returns the chips wagered this hand.
func (g *Game) Pot() int { return g.pot }

// CurrentBet returns the highest per-player contribution this round.
func (g *Game) CurrentBet() int { return g.currentBet }

// Turn returns the seat whose action is awaited, or -1.
func (g *Game) Turn() int { return g.turn }

// HandID returns the id of the hand in progress.
func (g *Game) HandID() string { return g.handID }

// HandNum returns how many hands have been dealt.
func (g *Game) HandNum() int { return g.handNum }

// Supply returns the table's full chip supply. Zero before Start.
func (g *Game) Supply() int { return g.supply }

// NumPlayers returns the number of seated players.
func (g *Game) NumPlayers() int { return len(g.players) }

// Join seats a new player with the starting stack. Seats are assigned in
// join order and are only open before the first hand.
func (g *Game) Join(name string) (int, error) {
	if g.phase != Waiting {
		return 0, ErrGameStarted
	}
	if len(g.players) >= g.rules.MaxPlayers {
		return 0, ErrGameFull
	}
	for _, p := range g.players {
		if p.Name == name {
			return 0, fmt.Errorf("player %q already seated", name)
		}
	}
	seat := len(g.players)
	g.players = append(g.players, &Player{
		Seat:  seat,
		Name:  name,
		Chips: g.rules.StartingChips,
	})
	g.logger.Info("Player joined", "name", name, "seat", seat, "chips", g.rules.StartingChips)
	return seat, nil
}

// Start deals the first hand. Further hands follow automatically after each
// settlement until one seat holds the entire supply.
func (g *Game) Start() error {
	if g.phase != Waiting {
		return ErrGameStarted
	}
	funded := 0
	for _, p := range g.players {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		return ErrNotEnoughPlayers
	}

	g.supply = 0
	for _, p := range g.players {
		g.supply += p.Chips
	}
	g.deck = deck.New(g.rng, g.rules.ranks())
	if g.rules.PenaltyRank == deck.NoCard {
		g.rules.PenaltyRank = g.deck.Top()
	}

	g.logger.Info("Table started",
		"players", len(g.players),
		"supply", g.supply,
		"deck", g.rules.DeckPreset,
		"penalty_rank", g.rules.PenaltyRank)

	g.startHand()
	return nil
}

// startHand collects antes, deals one card to every funded seat and opens
// the betting round. Seats that cannot cover the ante contribute what they
// have and sit the hand out folded.
func (g *Game) startHand() {
	g.handNum++
	g.handID = gameid.Generate()
	g.pot = 0
	g.currentBet = g.rules.Ante
	g.turn = -1

	for _, p := range g.players {
		p.resetForHand()
		switch {
		case p.Chips == 0:
			p.Folded = true
			p.LastAction = Fold
		case p.Chips < g.rules.Ante:
			g.pot += p.Chips
			p.Bet = p.Chips
			p.Chips = 0
			p.Folded = true
			p.LastAction = Fold
		default:
			p.Chips -= g.rules.Ante
			p.Bet = g.rules.Ante
			g.pot += g.rules.Ante
			// An ante that consumed the whole stack leaves nothing to bet
			// with; the seat rides the hand to showdown all-in.
			if p.Chips == 0 {
				p.AllIn = true
			}
		}
	}

	seats := make([]string, len(g.players))
	for i, p := range g.players {
		seats[i] = p.Name
	}
	g.bus.Publish(HandStartedEvent{
		HandID:  g.handID,
		HandNum: g.handNum,
		Ante:    g.rules.Ante,
		Pot:     g.pot,
		Seats:   seats,
		ts:      time.Now(),
	})

	g.deck.Shuffle()
	for _, p := range g.players {
		if p.Folded {
			continue
		}
		p.Card = g.deck.Deal()
		g.bus.Publish(CardDealtEvent{
			HandID: g.handID,
			Seat:   p.Seat,
			Name:   p.Name,
			Card:   p.Card,
			ts:     time.Now(),
		})
	}

	live := g.nonFolded()
	switch len(live) {
	case 0:
		// Nobody could cover the full ante. Award the pot to the largest
		// contributor so the table still makes progress.
		winner := g.largestContributor()
		g.logger.Warn("No seat could ante, awarding pot to largest contributor",
			"hand", g.handID, "winner", winner.Name)
		g.awardPot(winner, nil, nil, 0)
	case 1:
		g.awardPot(live[0], nil, nil, 0)
	default:
		g.phase = Betting
		g.turn = g.firstToAct()
		if g.turn < 0 {
			// Every live seat went all-in on the ante; nothing to bet.
			g.runShowdown()
		}
	}
}

// firstToAct returns the first pending seat scanning circularly from the
// previous hand's winner (seat 0 on the first hand).
func (g *Game) firstToAct() int {
	start := g.lastWinner
	if start < 0 {
		start = 0
	}
	n := len(g.players)
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		if g.players[seat].Pending() {
			return seat
		}
	}
	return -1
}

// PlaceBet opens the betting for the round. Valid only when the acting seat
// has no outstanding call obligation.
func (g *Game) PlaceBet(seat, amount int) error {
	p, err := g.actingPlayer(seat)
	if err != nil {
		return err
	}
	if g.currentBet != p.Bet {
		return ErrIllegalOpenBet
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > p.Chips {
		return ErrInsufficientChips
	}

	g.commit(p, amount)
	g.currentBet = p.Bet
	p.LastAction = Bet
	if p.Chips == 0 {
		p.AllIn = true
	}
	g.reopenAction(p)
	g.publishAction(p, Bet, amount)
	g.advanceTurn()
	return nil
}

// Call matches the outstanding obligation. A stack smaller than or equal to
// the obligation is committed in full as a short call and the seat goes
// all-in; the shortfall is settled by refunds at showdown.
func (g *Game) Call(seat int) error {
	p, err := g.actingPlayer(seat)
	if err != nil {
		return err
	}
	toCall := g.currentBet - p.Bet
	if toCall <= 0 {
		return ErrNothingToCall
	}

	if p.Chips <= toCall {
		short := p.Chips
		g.commit(p, short)
		p.AllIn = true
		p.LastAction = AllIn
		g.publishAction(p, AllIn, short)
	} else {
		g.commit(p, toCall)
		p.LastAction = Call
		g.publishAction(p, Call, toCall)
	}
	g.advanceTurn()
	return nil
}

// Raise calls the outstanding obligation and adds raiseAmount on top,
// reopening the action for every other active seat.
func (g *Game) Raise(seat, raiseAmount int) error {
	p, err := g.actingPlayer(seat)
	if err != nil {
		return err
	}
	toCall := g.currentBet - p.Bet
	if toCall <= 0 {
		return ErrIllegalOpenBet
	}
	if raiseAmount <= 0 {
		return ErrInvalidAmount
	}
	total := toCall + raiseAmount
	if total > p.Chips {
		return ErrInsufficientChips
	}

	g.commit(p, total)
	g.currentBet = p.Bet
	p.LastAction = Raise
	if p.Chips == 0 {
		p.AllIn = true
	}
	g.reopenAction(p)
	g.publishAction(p, Raise, total)
	g.advanceTurn()
	return nil
}

// Fold gives up the hand. Folding the penalty rank with chips behind charges
// a fraction of the remaining stack into the pot first. If only one seat
// remains the hand ends immediately in its favour.
func (g *Game) Fold(seat int) error {
	p, err := g.actingPlayer(seat)
	if err != nil {
		return err
	}

	penalty := 0
	if p.Card == g.rules.PenaltyRank && p.Chips > 0 {
		penalty = g.rules.penalty(p.Chips)
		g.commit(p, penalty)
		g.logger.Debug("Fold penalty charged",
			"hand", g.handID, "player", p.Name, "penalty", penalty)
	}
	p.Folded = true
	p.LastAction = Fold
	g.publishAction(p, Fold, penalty)

	if live := g.nonFolded(); len(live) == 1 {
		g.awardPot(live[0], nil, nil, 0)
		return nil
	}
	g.advanceTurn()
	return nil
}

// actingPlayer validates phase and turn and returns the acting seat's entry.
func (g *Game) actingPlayer(seat int) (*Player, error) {
	if g.phase != Betting {
		return nil, ErrInvalidPhase
	}
	if seat != g.turn {
		return nil, ErrNotYourTurn
	}
	return g.players[seat], nil
}

// commit moves chips from a player's stack into the pot and their round
// contribution.
func (g *Game) commit(p *Player, amount int) {
	p.Chips -= amount
	p.Bet += amount
	g.pot += amount
}

// reopenAction clears every other active seat's last action after a bet or
// raise established a new target. One pass over all seats so the invariant
// holds identically for both operations.
func (g *Game) reopenAction(raiser *Player) {
	for _, p := range g.players {
		if p != raiser && p.Active() {
			p.LastAction = None
		}
	}
}

func (g *Game) publishAction(p *Player, action Action, amount int) {
	g.bus.Publish(ActionTakenEvent{
		HandID:   g.handID,
		Seat:     p.Seat,
		Name:     p.Name,
		Action:   action,
		Amount:   amount,
		PotAfter: g.pot,
		ts:       time.Now(),
	})
}

// advanceTurn moves the turn to the next pending seat, or closes the round
// and runs the showdown when nobody still owes an action. The scan is
// bounded to one full circuit as a defensive limit.
func (g *Game) advanceTurn() {
	pending := false
	for _, p := range g.players {
		if p.Pending() {
			pending = true
			break
		}
	}
	if !pending {
		g.runShowdown()
		return
	}

	n := len(g.players)
	for i := 1; i <= n; i++ {
		seat := (g.turn + i) % n
		if g.players[seat].Pending() {
			g.turn = seat
			return
		}
	}
	// Unreachable given the pending scan above; close the round rather than
	// stall the table.
	g.runShowdown()
}

// nonFolded returns the players still in the hand.
func (g *Game) nonFolded() []*Player {
	live := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if !p.Folded {
			live = append(live, p)
		}
	}
	return live
}

func (g *Game) largestContributor() *Player {
	best := g.players[0]
	for _, p := range g.players[1:] {
		if p.Bet > best.Bet {
			best = p
		}
	}
	return best
}

// awardPot settles the hand: refunds first, then the whole remaining pot to
// the winner, then the end-of-hand transition.
func (g *Game) awardPot(winner *Player, cards map[int]deck.Rank, refunds map[int]int, redraws int) {
	for seat, refund := range refunds {
		p := g.players[seat]
		p.Chips += refund
		p.Bet -= refund
		g.pot -= refund
	}

	amount := g.pot
	winner.Chips += amount
	g.pot = 0

	g.bus.Publish(ShowdownResultEvent{
		HandID:     g.handID,
		WinnerSeat: winner.Seat,
		WinnerName: winner.Name,
		Amount:     amount,
		Cards:      cards,
		Refunds:    refunds,
		Redraws:    redraws,
		ts:         time.Now(),
	})
	g.logger.Info("Hand settled",
		"hand", g.handID, "winner", winner.Name, "amount", amount, "redraws", redraws)

	g.finishHand(winner)
}

// finishHand resets per-hand state and either terminates the table or deals
// the next hand with the winner acting first.
func (g *Game) finishHand(winner *Player) {
	terminal := winner.Chips == g.supply

	g.bus.Publish(HandFinishedEvent{
		HandID:     g.handID,
		WinnerSeat: winner.Seat,
		WinnerName: winner.Name,
		Terminal:   terminal,
		ts:         time.Now(),
	})

	for _, p := range g.players {
		p.resetForHand()
	}
	g.turn = -1
	g.lastWinner = winner.Seat

	if terminal {
		g.phase = Finished
		g.logger.Info("Table finished", "winner", winner.Name, "supply", g.supply)
		if err := g.ledger.CreditChips(winner.Name, g.supply); err != nil {
			g.logger.Error("Failed to release table value", "winner", winner.Name, "error", err)
		}
		return
	}
	g.startHand()
}

// TotalChips returns pot plus all stacks; equal to the supply at every
// point between transitions.
func (g *Game) TotalChips() int {
	total := g.pot
	for _, p := range g.players {
		total += p.Chips
	}
	return total
}
