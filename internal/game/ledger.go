package game

// Ledger custodies chip value outside the in-hand pot: buy-ins, cash-outs
// and the final payout when a table terminates. The engine only calls it at
// those boundaries; everything mid-hand is tracked on the Game itself.
type Ledger interface {
	CreditChips(name string, amount int) error
	DebitChips(name string, amount int) error
	Balance(name string) (int, error)
}

// NopLedger discards all ledger calls. Used when a table has no external
// value attached, e.g. in simulations.
type NopLedger struct{}

func (NopLedger) CreditChips(string, int) error { return nil }
func (NopLedger) DebitChips(string, int) error  { return nil }
func (NopLedger) Balance(string) (int, error)   { return 0, nil }
