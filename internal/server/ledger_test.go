package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger(100)

	balance, err := l.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, 100, balance, "accounts open with the configured bankroll")

	require.NoError(t, l.DebitChips("alice", 30))
	require.NoError(t, l.CreditChips("alice", 10))

	balance, _ = l.Balance("alice")
	assert.Equal(t, 80, balance)

	err = l.DebitChips("alice", 1000)
	require.Error(t, err, "overdraft must be rejected")
	balance, _ = l.Balance("alice")
	assert.Equal(t, 80, balance, "failed debit must not change the balance")

	assert.Error(t, l.DebitChips("alice", -1))
	assert.Error(t, l.CreditChips("alice", -1))
}
