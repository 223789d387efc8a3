package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/indianpoker/cmd/indianpoker/shared"
	"github.com/lox/indianpoker/internal/game"
	"github.com/lox/indianpoker/internal/randutil"
)

// SimulateCmd plays whole games in-process with random legal actions. Used
// for soak-testing the settlement engine: every table must conserve chips on
// every action and terminate with one player holding the full supply.
type SimulateCmd struct {
	Tables  int    `kong:"default='4',help='Number of tables to run concurrently'"`
	Players int    `kong:"default='4',help='Players per table'"`
	Ante    int    `kong:"default='1',help='Ante per hand'"`
	Chips   int    `kong:"default='20',help='Starting chips per player'"`
	Deck    string `kong:"default='double-ten',enum='double-ten,joker',help='Deck preset'"`
	Seed    int64  `kong:"default='0',help='RNG seed (0 for random)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
}

type tableResult struct {
	table   int
	hands   int
	actions int
	winner  string
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger("error", c.Debug)

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}

	rules := game.DefaultRules()
	rules.Ante = c.Ante
	rules.StartingChips = c.Chips
	rules.DeckPreset = c.Deck
	rules.MaxPlayers = c.Players
	if err := rules.Validate(); err != nil {
		return err
	}

	fmt.Printf("Simulating %d tables of %d players (seed %d)\n", c.Tables, c.Players, c.Seed)
	start := time.Now()

	// Independent seeds per table so tables never share an RNG.
	master := randutil.New(c.Seed)

	var mu sync.Mutex
	results := make([]tableResult, 0, c.Tables)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < c.Tables; i++ {
		table := i
		seed := master.Int64()
		g.Go(func() error {
			res, err := playTable(ctx, table, seed, rules, c.Players, logger)
			if err != nil {
				return fmt.Errorf("table %d: %w", table, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	duration := time.Since(start)
	totalHands, totalActions := 0, 0
	for _, r := range results {
		totalHands += r.hands
		totalActions += r.actions
		fmt.Printf("table %d: %d hands, %d actions, winner %s\n", r.table, r.hands, r.actions, r.winner)
	}
	fmt.Printf("\n%d tables, %d hands, %d actions in %s\n", len(results), totalHands, totalActions, duration.Round(time.Millisecond))
	return nil
}

// playTable runs one table to termination with random legal actions.
func playTable(ctx context.Context, table int, seed int64, rules game.Rules, players int, logger *log.Logger) (tableResult, error) {
	g := game.New(logger, randutil.New(seed), rules)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(table)+1))

	for i := 0; i < players; i++ {
		if _, err := g.Join(fmt.Sprintf("t%d-p%d", table, i)); err != nil {
			return tableResult{}, err
		}
	}
	if err := g.Start(); err != nil {
		return tableResult{}, err
	}

	res := tableResult{table: table}
	supply := g.Supply()

	// A table of N players with C chips each cannot take more actions than
	// this without a settlement bug; treat exceeding it as failure.
	const actionCap = 1_000_000
	for g.Phase() != game.Finished {
		select {
		case <-ctx.Done():
			return tableResult{}, ctx.Err()
		default:
		}

		if res.actions++; res.actions > actionCap {
			return tableResult{}, fmt.Errorf("no termination after %d actions", actionCap)
		}

		seat := g.Turn()
		if seat < 0 {
			return tableResult{}, fmt.Errorf("no actor in phase %v", g.Phase())
		}
		if err := randomAction(g, rng, seat); err != nil {
			return tableResult{}, fmt.Errorf("action %d on seat %d: %w", res.actions, seat, err)
		}

		if total := g.TotalChips(); total != supply {
			return tableResult{}, fmt.Errorf("conservation violated: total %d, supply %d", total, supply)
		}
	}

	res.hands = g.HandNum()
	for _, p := range g.View(game.SpectatorSeat).Players {
		if p.Chips == supply {
			res.winner = p.Name
		}
	}
	return res, nil
}

// randomAction plays a random legal action for the seat on the clock.
func randomAction(g *game.Game, rng *rand.Rand, seat int) error {
	chips := g.View(game.SpectatorSeat).Players[seat].Chips

	if toCall := g.ToCall(seat); toCall > 0 {
		switch rng.IntN(4) {
		case 0:
			return g.Fold(seat)
		case 1:
			if err := g.Raise(seat, 1+rng.IntN(3)); err == nil {
				return nil
			}
			return g.Call(seat)
		default:
			return g.Call(seat)
		}
	}

	if rng.IntN(4) == 0 {
		return g.Fold(seat)
	}
	amount := 1 + rng.IntN(3)
	if amount > chips {
		amount = chips
	}
	return g.PlaceBet(seat, amount)
}
