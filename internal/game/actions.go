package game

// Phase represents the lifecycle stage of the current hand. Phases only move
// forward within a hand: Waiting → Betting → Showdown → Finished, with
// Betting → Finished possible directly when all but one player folds.
type Phase int

const (
	Waiting Phase = iota
	Betting
	Showdown
	Finished
)

func (p Phase) String() string {
	return [...]string{"waiting", "betting", "showdown", "finished"}[p]
}

// Action represents a player action within a betting round.
type Action int

const (
	None Action = iota
	Bet
	Call
	Raise
	Fold
	AllIn
)

func (a Action) String() string {
	return [...]string{"none", "bet", "call", "raise", "fold", "allin"}[a]
}
