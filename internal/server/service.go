package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/indianpoker/internal/deck"
	"github.com/lox/indianpoker/internal/game"
	"github.com/lox/indianpoker/internal/randutil"
)

// MessageSender delivers protocol messages to connected clients. The
// websocket Server implements it; tests substitute a recorder.
type MessageSender interface {
	BroadcastToTable(tableID string, msg *Message)
	SendToPlayer(playerName string, msg *Message) error
}

// GameService manages the set of tables hosted by the server.
type GameService struct {
	tables map[string]*Table
	sender MessageSender
	ledger game.Ledger
	clock  quartz.Clock
	logger *log.Logger
	mu     sync.RWMutex
}

// NewGameService creates a game service backed by the given ledger and clock.
func NewGameService(logger *log.Logger, sender MessageSender, ledger game.Ledger, clock quartz.Clock) *GameService {
	return &GameService{
		tables: make(map[string]*Table),
		sender: sender,
		ledger: ledger,
		clock:  clock,
		logger: logger.WithPrefix("service"),
	}
}

// Table is a hosted game plus the connection-facing bookkeeping around it.
type Table struct {
	ID     string
	cfg    TableConfig
	game   *game.Game
	seats  map[string]int // playerName -> seat
	names  map[int]string // seat -> playerName
	away   map[int]bool   // seats whose player has left; folded on their turn
	status string         // "waiting", "active", "finished"

	timer   *quartz.Timer
	turnGen int

	svc    *GameService
	logger *log.Logger
	mu     sync.Mutex
}

// Table statuses reported in table listings.
const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// CreateTable registers a new table from configuration. The table name is
// its identifier.
func (s *GameService) CreateTable(cfg TableConfig) (*Table, error) {
	rules := cfg.Rules()
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", cfg.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[cfg.Name]; exists {
		return nil, fmt.Errorf("table %s already exists", cfg.Name)
	}

	t := &Table{
		ID:     cfg.Name,
		cfg:    cfg,
		seats:  make(map[string]int),
		names:  make(map[int]string),
		away:   make(map[int]bool),
		status: StatusWaiting,
		svc:    s,
		logger: s.logger.WithPrefix("table:" + cfg.Name),
	}
	t.game = game.New(s.logger, randutil.New(time.Now().UnixNano()), rules,
		game.WithLedger(s.ledger))
	t.game.EventBus().Subscribe(&tableEvents{t: t})

	s.tables[cfg.Name] = t
	s.logger.Info("Table created", "table", cfg.Name, "ante", cfg.Ante, "chips", cfg.StartingChips)
	return t, nil
}

// GetTable returns a table by ID, or nil.
func (s *GameService) GetTable(tableID string) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[tableID]
}

// ListTables returns summary info for every table, sorted by ID.
func (s *GameService) ListTables() []TableInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]TableInfo, 0, len(s.tables))
	for _, t := range s.tables {
		t.mu.Lock()
		infos = append(infos, TableInfo{
			ID:            t.ID,
			Name:          t.cfg.Name,
			PlayerCount:   t.game.NumPlayers(),
			MaxPlayers:    t.cfg.MaxPlayers,
			Ante:          t.cfg.Ante,
			StartingChips: t.cfg.StartingChips,
			Status:        t.status,
		})
		t.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// JoinTable seats a player, debiting their buy-in from the ledger.
func (s *GameService) JoinTable(tableID, playerName string) (int, error) {
	t := s.GetTable(tableID)
	if t == nil {
		return 0, fmt.Errorf("table not found: %s", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seated := t.seats[playerName]; seated {
		return 0, fmt.Errorf("player %s already seated at %s", playerName, tableID)
	}

	if err := s.ledger.DebitChips(playerName, t.cfg.StartingChips); err != nil {
		return 0, fmt.Errorf("buy-in failed: %w", err)
	}

	seat, err := t.game.Join(playerName)
	if err != nil {
		// Return the buy-in; the seat was never taken.
		if cerr := s.ledger.CreditChips(playerName, t.cfg.StartingChips); cerr != nil {
			t.logger.Error("Failed to refund buy-in", "player", playerName, "error", cerr)
		}
		return 0, err
	}

	t.seats[playerName] = seat
	t.names[seat] = playerName
	t.logger.Info("Player seated", "player", playerName, "seat", seat)
	return seat, nil
}

// LeaveTable marks a seated player as away. Their seat folds automatically
// whenever the turn reaches it; their chips stay in play until the table
// terminates.
func (s *GameService) LeaveTable(tableID, playerName string) error {
	t := s.GetTable(tableID)
	if t == nil {
		return fmt.Errorf("table not found: %s", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seat, seated := t.seats[playerName]
	if !seated {
		return fmt.Errorf("player %s is not seated at %s", playerName, tableID)
	}

	t.away[seat] = true
	t.logger.Info("Player left table", "player", playerName, "seat", seat)
	t.armTurnTimer()
	return nil
}

// StartTable starts play on a waiting table.
func (s *GameService) StartTable(tableID string) error {
	t := s.GetTable(tableID)
	if t == nil {
		return fmt.Errorf("table not found: %s", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusWaiting {
		return fmt.Errorf("table %s already started", tableID)
	}
	if err := t.game.Start(); err != nil {
		return err
	}
	t.status = StatusActive
	t.armTurnTimer()
	return nil
}

// HandleAction applies a player's betting action to their table.
func (s *GameService) HandleAction(tableID, playerName string, data ActionData) error {
	t := s.GetTable(tableID)
	if t == nil {
		return fmt.Errorf("table not found: %s", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seat, seated := t.seats[playerName]
	if !seated {
		return fmt.Errorf("player %s is not seated at %s", playerName, tableID)
	}

	var err error
	switch data.Action {
	case "bet":
		err = t.game.PlaceBet(seat, data.Amount)
	case "call":
		err = t.game.Call(seat)
	case "raise":
		err = t.game.Raise(seat, data.Amount)
	case "fold":
		err = t.game.Fold(seat)
	default:
		return fmt.Errorf("unknown action: %s", data.Action)
	}
	if err != nil {
		return err
	}

	t.armTurnTimer()
	return nil
}

// State returns the table view as seen by the named player. Names that are
// not seated get the spectator view with every card visible.
func (s *GameService) State(tableID, playerName string) (game.View, error) {
	t := s.GetTable(tableID)
	if t == nil {
		return game.View{}, fmt.Errorf("table not found: %s", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seat, seated := t.seats[playerName]
	if !seated {
		seat = game.SpectatorSeat
	}
	return t.game.View(seat), nil
}

// Shutdown stops every table's pending timer.
func (s *GameService) Shutdown() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables {
		t.mu.Lock()
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
		t.mu.Unlock()
	}
}

// armTurnTimer schedules an auto-fold for the seat currently on the clock.
// Away seats fold immediately. Must be called with the table lock held.
func (t *Table) armTurnTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	for t.game.Phase() == game.Betting {
		seat := t.game.Turn()
		if seat < 0 {
			return
		}
		if t.away[seat] {
			if err := t.game.Fold(seat); err != nil {
				t.logger.Error("Auto-fold for away player failed", "seat", seat, "error", err)
				return
			}
			continue
		}

		timeout := t.cfg.TurnTimeout
		if timeout <= 0 {
			return
		}
		t.turnGen++
		gen := t.turnGen
		t.timer = t.svc.clock.AfterFunc(time.Duration(timeout)*time.Second, func() {
			t.timeoutFold(gen, seat)
		})
		return
	}
}

// timeoutFold folds the seat that let its turn clock expire.
func (t *Table) timeoutFold(gen, seat int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A later action already moved the game on.
	if gen != t.turnGen || t.game.Phase() != game.Betting || t.game.Turn() != seat {
		return
	}

	name := t.names[seat]
	t.logger.Warn("Turn timeout, folding player", "player", name, "seat", seat)

	msg, err := NewMessage(MessageTypePlayerTimeout, PlayerTimeoutData{
		TableID:        t.ID,
		PlayerName:     name,
		TimeoutSeconds: t.cfg.TurnTimeout,
		Action:         "fold",
	})
	if err == nil {
		t.svc.sender.BroadcastToTable(t.ID, msg)
	}

	if err := t.game.Fold(seat); err != nil {
		t.logger.Error("Timeout fold failed", "seat", seat, "error", err)
		return
	}
	t.armTurnTimer()
}

// tableEvents forwards engine events to connected clients. It runs
// synchronously inside engine calls, so the table lock is already held and
// must not be retaken here.
type tableEvents struct {
	t *Table
}

func (te *tableEvents) OnEvent(event game.Event) {
	t := te.t
	switch e := event.(type) {
	case game.HandStartedEvent:
		t.broadcast(MessageTypeHandStarted, HandStartedData{
			TableID: t.ID,
			HandID:  e.HandID,
			HandNum: e.HandNum,
			Ante:    e.Ante,
			Pot:     e.Pot,
			Seats:   e.Seats,
		})

	case game.CardDealtEvent:
		// The card owner must never learn their own rank; everyone else
		// sees it. Deliver individually rather than broadcasting.
		for seat, name := range t.names {
			data := CardDealtData{
				TableID: t.ID,
				Seat:    e.Seat,
				Name:    e.Name,
				Card:    e.Card,
				Redraw:  e.Redraw,
			}
			if seat == e.Seat {
				data.Card = deck.NoCard
			}
			msg, err := NewMessage(MessageTypeCardDealt, data)
			if err != nil {
				t.logger.Error("Failed to create card dealt message", "error", err)
				return
			}
			if err := t.svc.sender.SendToPlayer(name, msg); err != nil {
				t.logger.Debug("Card dealt not delivered", "player", name, "error", err)
			}
		}

	case game.ActionTakenEvent:
		t.broadcast(MessageTypeActionTaken, ActionTakenData{
			TableID:  t.ID,
			Seat:     e.Seat,
			Name:     e.Name,
			Action:   e.Action.String(),
			Amount:   e.Amount,
			PotAfter: e.PotAfter,
		})

	case game.ShowdownResultEvent:
		t.broadcast(MessageTypeShowdownResult, ShowdownResultData{
			TableID:    t.ID,
			HandID:     e.HandID,
			WinnerSeat: e.WinnerSeat,
			WinnerName: e.WinnerName,
			Amount:     e.Amount,
			Cards:      e.Cards,
			Refunds:    e.Refunds,
			Redraws:    e.Redraws,
		})

	case game.HandFinishedEvent:
		if e.Terminal {
			t.status = StatusFinished
			if t.timer != nil {
				t.timer.Stop()
				t.timer = nil
			}
		}
		t.broadcast(MessageTypeHandFinished, HandFinishedData{
			TableID:    t.ID,
			HandID:     e.HandID,
			WinnerSeat: e.WinnerSeat,
			WinnerName: e.WinnerName,
			Terminal:   e.Terminal,
		})
	}
}

func (t *Table) broadcast(mt MessageType, data interface{}) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		t.logger.Error("Failed to create message", "type", mt, "error", err)
		return
	}
	t.svc.sender.BroadcastToTable(t.ID, msg)
}
