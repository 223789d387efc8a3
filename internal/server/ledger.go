package server

import (
	"fmt"
	"sync"
)

// MemoryLedger is an in-memory chip ledger tracking per-player bankrolls
// outside of any table. Players are opened lazily with the configured
// bankroll on first touch.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
	bankroll int
}

// NewMemoryLedger creates a ledger that opens each account with the given
// bankroll.
func NewMemoryLedger(bankroll int) *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]int),
		bankroll: bankroll,
	}
}

func (l *MemoryLedger) open(name string) int {
	if _, ok := l.balances[name]; !ok {
		l.balances[name] = l.bankroll
	}
	return l.balances[name]
}

// CreditChips adds chips to a player's bankroll.
func (l *MemoryLedger) CreditChips(name string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative: %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[name] = l.open(name) + amount
	return nil
}

// DebitChips removes chips from a player's bankroll, failing if the balance
// cannot cover the amount.
func (l *MemoryLedger) DebitChips(name string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must not be negative: %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.open(name)
	if balance < amount {
		return fmt.Errorf("insufficient bankroll for %s: have %d, need %d", name, balance, amount)
	}
	l.balances[name] = balance - amount
	return nil
}

// Balance returns a player's current bankroll.
func (l *MemoryLedger) Balance(name string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open(name), nil
}
