package game

import (
	"time"

	"github.com/lox/indianpoker/internal/deck"
)

// EventType identifies a game domain event.
type EventType string

const (
	EventTypeHandStarted    EventType = "hand_started"
	EventTypeCardDealt      EventType = "card_dealt"
	EventTypeActionTaken    EventType = "action_taken"
	EventTypeShowdownResult EventType = "showdown_result"
	EventTypeHandFinished   EventType = "hand_finished"
)

func (et EventType) String() string { return string(et) }

// Event is any notification emitted by the engine. Events are published
// synchronously as part of the state transition that caused them.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartedEvent is published after antes are collected, before any card
// is dealt.
type HandStartedEvent struct {
	HandID  string
	HandNum int
	Ante    int
	Pot     int
	Seats   []string // seat-indexed player names
	ts      time.Time
}

func (e HandStartedEvent) EventType() EventType { return EventTypeHandStarted }
func (e HandStartedEvent) Timestamp() time.Time { return e.ts }

// CardDealtEvent is published for every card dealt, including tie-break
// redraws. Consumers that fan events out to players must never deliver a
// seat's own card back to that seat.
type CardDealtEvent struct {
	HandID string
	Seat   int
	Name   string
	Card   deck.Rank
	Redraw bool
	ts     time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.ts }

// ActionTakenEvent is published after a betting action has been applied.
// Amount is the chips moved into the pot by the action; for folds it is the
// penalty charged, if any.
type ActionTakenEvent struct {
	HandID   string
	Seat     int
	Name     string
	Action   Action
	Amount   int
	PotAfter int
	ts       time.Time
}

func (e ActionTakenEvent) EventType() EventType { return EventTypeActionTaken }
func (e ActionTakenEvent) Timestamp() time.Time { return e.ts }

// ShowdownResultEvent is published once a unique winner is known, after
// short all-in refunds have been paid but before the next hand starts.
// Refunds maps seat → chips returned for contributions that could not be
// contested. For a fold-out win Cards is empty and Redraws is zero.
type ShowdownResultEvent struct {
	HandID     string
	WinnerSeat int
	WinnerName string
	Amount     int
	Cards      map[int]deck.Rank
	Refunds    map[int]int
	Redraws    int
	ts         time.Time
}

func (e ShowdownResultEvent) EventType() EventType { return EventTypeShowdownResult }
func (e ShowdownResultEvent) Timestamp() time.Time { return e.ts }

// HandFinishedEvent closes out a hand. Terminal is set when one seat holds
// the table's entire chip supply and no further hands will be dealt.
type HandFinishedEvent struct {
	HandID     string
	WinnerSeat int
	WinnerName string
	Terminal   bool
	ts         time.Time
}

func (e HandFinishedEvent) EventType() EventType { return EventTypeHandFinished }
func (e HandFinishedEvent) Timestamp() time.Time { return e.ts }

// EventSubscriber receives game events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus fans events out to subscribers.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a synchronous in-memory event bus.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new SimpleEventBus.
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to all subscribers in subscription order.
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
