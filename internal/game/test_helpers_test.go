package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/indianpoker/internal/deck"
	"github.com/lox/indianpoker/internal/randutil"
)

func rank(c int) deck.Rank {
	return deck.Rank(c)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// eventRecorder captures published events for assertions.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) OnEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(et EventType) []Event {
	var out []Event
	for _, e := range r.events {
		if e.EventType() == et {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) last(et EventType) Event {
	evs := r.ofType(et)
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

// newTestGame seats the named players with optional per-seat chip overrides
// and starts the table.
func newTestGame(t *testing.T, seed int64, rules Rules, names []string, chips []int) (*Game, *eventRecorder) {
	t.Helper()

	rec := &eventRecorder{}
	g := New(testLogger(), randutil.New(seed), rules)
	g.EventBus().Subscribe(rec)

	for _, name := range names {
		if _, err := g.Join(name); err != nil {
			t.Fatalf("Join(%s): %v", name, err)
		}
	}
	for i, c := range chips {
		g.players[i].Chips = c
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g, rec
}

// setCards overwrites the live cards so showdown outcomes are deterministic.
func setCards(g *Game, cards ...int) {
	for i, c := range cards {
		g.players[i].Card = rank(c)
	}
}

func requireConservation(t *testing.T, g *Game) {
	t.Helper()
	if total := g.TotalChips(); total != g.Supply() {
		t.Fatalf("Chip conservation violated: total %d, supply %d", total, g.Supply())
	}
}
