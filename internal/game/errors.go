package game

import "errors"

// Rejection taxonomy for player actions. Every rejection leaves the game
// state untouched: validation fully precedes mutation in each operation.
var (
	// ErrInvalidPhase is returned for actions attempted outside the phase
	// that permits them.
	ErrInvalidPhase = errors.New("action not valid in current phase")

	// ErrNotYourTurn is returned when the caller is not the seat whose
	// action is awaited.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInsufficientChips is returned when a bet or raise total exceeds the
	// caller's stack. A call that exceeds the stack is not an error; it goes
	// through the short-call all-in path instead.
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrNothingToCall is returned when call is invoked with no outstanding
	// obligation.
	ErrNothingToCall = errors.New("nothing to call")

	// ErrIllegalOpenBet is returned when bet is used where raise is required
	// (an obligation exists) or raise where bet is required (no obligation).
	ErrIllegalOpenBet = errors.New("wrong action for current obligation")

	// ErrInvalidAmount is returned for non-positive bet or raise amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrGameFull is returned when joining a table with no free seats.
	ErrGameFull = errors.New("table is full")

	// ErrGameStarted is returned when joining after the first hand has been
	// dealt.
	ErrGameStarted = errors.New("game already started")

	// ErrNotEnoughPlayers is returned when starting with fewer than two
	// funded seats.
	ErrNotEnoughPlayers = errors.New("need at least two players with chips")
)
