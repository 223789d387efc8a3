package game

import (
	"errors"
	"testing"

	rand "math/rand/v2"

	"github.com/lox/indianpoker/internal/randutil"
)

func TestJoinValidation(t *testing.T) {
	rules := DefaultRules()
	rules.MaxPlayers = 2
	g := New(testLogger(), randutil.New(1), rules)

	if _, err := g.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := g.Join("alice"); err == nil {
		t.Error("Duplicate name should be rejected")
	}
	if _, err := g.Join("bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := g.Join("carol"); !errors.Is(err, ErrGameFull) {
		t.Errorf("Expected ErrGameFull, got %v", err)
	}

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := g.Join("dave"); !errors.Is(err, ErrGameStarted) {
		t.Errorf("Expected ErrGameStarted after start, got %v", err)
	}
}

func TestStartNeedsTwoFundedPlayers(t *testing.T) {
	g := New(testLogger(), randutil.New(1), DefaultRules())
	if _, err := g.Join("alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := g.Start(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("Expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestRulesValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"zero ante", func(r *Rules) { r.Ante = 0 }},
		{"stack below ante", func(r *Rules) { r.StartingChips = 1 }},
		{"unknown deck", func(r *Rules) { r.DeckPreset = "tarot" }},
		{"penalty fraction above one", func(r *Rules) { r.PenaltyNum = 3; r.PenaltyDen = 2 }},
		{"single seat", func(r *Rules) { r.MaxPlayers = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)
			if err := rules.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
	if err := DefaultRules().Validate(); err != nil {
		t.Errorf("Default rules should validate, got %v", err)
	}
}

func TestPartialAnteFoldsOut(t *testing.T) {
	rules := DefaultRules()
	rules.Ante = 5
	g, _ := newTestGame(t, 1, rules, []string{"alice", "bob", "carol"}, []int{20, 3, 20})

	bob := g.players[1]
	if !bob.Folded {
		t.Error("Bob cannot cover the ante and should sit out folded")
	}
	if bob.Chips != 0 || bob.Bet != 3 {
		t.Errorf("Bob should have contributed his whole 3-chip stack, chips=%d bet=%d", bob.Chips, bob.Bet)
	}
	if bob.Card != 0 {
		t.Error("Folded seats must not be dealt a card")
	}
	if g.Pot() != 13 {
		t.Errorf("Pot should hold 5+3+5=13, got %d", g.Pot())
	}
	if g.Phase() != Betting {
		t.Errorf("Two funded seats remain, expected betting, got %v", g.Phase())
	}
	requireConservation(t, g)
}

func TestWinnerActsFirstNextHand(t *testing.T) {
	g, _ := newTestGame(t, 1, DefaultRules(), []string{"alice", "bob", "carol"}, nil)

	setCards(g, 2, 3, 4)
	if err := g.Fold(0); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if err := g.Fold(1); err != nil {
		t.Fatalf("Fold: %v", err)
	}

	// Carol won hand 1 by fold-out; she opens hand 2.
	if g.HandNum() != 2 {
		t.Fatalf("Expected hand 2, got %d", g.HandNum())
	}
	if g.Turn() != 2 {
		t.Errorf("Previous winner should act first, turn is %d", g.Turn())
	}
}

func TestTerminationReleasesLedgerValue(t *testing.T) {
	ledger := &recordingLedger{}
	g := New(testLogger(), randutil.New(1), DefaultRules(), WithLedger(ledger))
	rec := &eventRecorder{}
	g.EventBus().Subscribe(rec)

	for _, name := range []string{"alice", "bob"} {
		if _, err := g.Join(name); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}
	g.players[0].Chips = 2
	g.players[1].Chips = 2
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	setCards(g, 9, 3)
	if err := g.PlaceBet(0, 1); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if err := g.Call(1); err != nil {
		t.Fatalf("Call: %v", err)
	}

	if g.Phase() != Finished {
		t.Fatalf("Expected finished, got %v", g.Phase())
	}
	if ledger.credited["alice"] != 4 {
		t.Errorf("Alice should be credited the 4-chip supply, got %d", ledger.credited["alice"])
	}

	fin := rec.last(EventTypeHandFinished).(HandFinishedEvent)
	if !fin.Terminal || fin.WinnerName != "alice" {
		t.Errorf("Expected terminal finish for alice, got %+v", fin)
	}
}

type recordingLedger struct {
	credited map[string]int
}

func (l *recordingLedger) CreditChips(name string, amount int) error {
	if l.credited == nil {
		l.credited = make(map[string]int)
	}
	l.credited[name] += amount
	return nil
}

func (l *recordingLedger) DebitChips(string, int) error { return nil }
func (l *recordingLedger) Balance(string) (int, error)  { return 0, nil }

func TestRandomPlayConservesChips(t *testing.T) {
	// Soak: four seats play random legal actions across many hands; total
	// chips must equal the supply after every single transition.
	g, _ := newTestGame(t, 99, DefaultRules(), []string{"a", "b", "c", "d"}, nil)
	rng := rand.New(rand.NewPCG(7, 11))

	const maxActions = 5000
	for i := 0; i < maxActions && g.Phase() != Finished; i++ {
		seat := g.Turn()
		if seat < 0 {
			t.Fatalf("Action %d: no turn while phase %v", i, g.Phase())
		}

		var err error
		if toCall := g.ToCall(seat); toCall > 0 {
			switch rng.IntN(4) {
			case 0:
				err = g.Fold(seat)
			case 1:
				err = g.Raise(seat, 1)
				if errors.Is(err, ErrInsufficientChips) {
					err = g.Call(seat)
				}
			default:
				err = g.Call(seat)
			}
		} else {
			if rng.IntN(4) == 0 {
				err = g.Fold(seat)
			} else {
				amount := 1 + rng.IntN(3)
				err = g.PlaceBet(seat, amount)
				if errors.Is(err, ErrInsufficientChips) {
					err = g.PlaceBet(seat, g.players[seat].Chips)
				}
			}
		}
		if err != nil {
			t.Fatalf("Action %d on seat %d: %v", i, seat, err)
		}
		requireConservation(t, g)
	}

	if g.Phase() == Finished {
		for _, p := range g.players {
			if p.Chips != 0 && p.Chips != g.Supply() {
				t.Errorf("After termination %s holds %d of %d", p.Name, p.Chips, g.Supply())
			}
		}
	}
}

func TestViewHidesOwnCard(t *testing.T) {
	g, _ := newTestGame(t, 1, DefaultRules(), []string{"alice", "bob", "carol"}, nil)
	setCards(g, 4, 7, 9)

	v := g.View(1)
	if v.Players[1].Card != 0 {
		t.Errorf("Bob must not see his own card, got %v", v.Players[1].Card)
	}
	if v.Players[0].Card != 4 || v.Players[2].Card != 9 {
		t.Errorf("Bob should see every other card, got %v and %v", v.Players[0].Card, v.Players[2].Card)
	}

	spect := g.View(SpectatorSeat)
	if spect.Players[1].Card != 7 {
		t.Errorf("Spectator view should show all cards, got %v", spect.Players[1].Card)
	}
}

func TestEventSequenceForOneHand(t *testing.T) {
	g, rec := newTestGame(t, 1, DefaultRules(), []string{"alice", "bob"}, []int{2, 2})

	setCards(g, 9, 3)
	if err := g.PlaceBet(0, 1); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if err := g.Call(1); err != nil {
		t.Fatalf("Call: %v", err)
	}

	var types []EventType
	for _, e := range rec.events {
		types = append(types, e.EventType())
	}
	want := []EventType{
		EventTypeHandStarted,
		EventTypeCardDealt,
		EventTypeCardDealt,
		EventTypeActionTaken,
		EventTypeActionTaken,
		EventTypeShowdownResult,
		EventTypeHandFinished,
	}
	if len(types) != len(want) {
		t.Fatalf("Expected %d events, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Event %d: expected %v, got %v", i, want[i], types[i])
		}
	}
}
