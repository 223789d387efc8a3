package server

import (
	"encoding/json"
	"time"

	"github.com/lox/indianpoker/internal/deck"
	"github.com/lox/indianpoker/internal/game"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeJoinTable  MessageType = "join_table"
	MessageTypeLeaveTable MessageType = "leave_table"
	MessageTypeListTables MessageType = "list_tables"
	MessageTypeStartTable MessageType = "start_table"
	MessageTypeAction     MessageType = "action"
	MessageTypeGetState   MessageType = "get_state"

	// Server to client messages
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeError          MessageType = "error"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeHandStarted    MessageType = "hand_started"
	MessageTypeCardDealt      MessageType = "card_dealt"
	MessageTypeActionTaken    MessageType = "action_taken"
	MessageTypeShowdownResult MessageType = "showdown_result"
	MessageTypeHandFinished   MessageType = "hand_finished"
	MessageTypePlayerTimeout  MessageType = "player_timeout"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type StartTableData struct {
	TableID string `json:"tableId"`
}

type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"` // bet, call, raise, fold
	Amount  int    `json:"amount,omitempty"`
}

type GetStateData struct {
	TableID string `json:"tableId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PlayerCount   int    `json:"playerCount"`
	MaxPlayers    int    `json:"maxPlayers"`
	Ante          int    `json:"ante"`
	StartingChips int    `json:"startingChips"`
	Status        string `json:"status"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableJoinedData struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

// TableStateData carries a per-viewer snapshot. The View inside is already
// masked so the recipient never sees their own card.
type TableStateData struct {
	TableID string    `json:"tableId"`
	View    game.View `json:"view"`
}

type HandStartedData struct {
	TableID string   `json:"tableId"`
	HandID  string   `json:"handId"`
	HandNum int      `json:"handNum"`
	Ante    int      `json:"ante"`
	Pot     int      `json:"pot"`
	Seats   []string `json:"seats"` // seat-indexed player names
}

// CardDealtData is recipient-filtered: the card owner receives it with the
// card zeroed out, everyone else sees the rank.
type CardDealtData struct {
	TableID string    `json:"tableId"`
	Seat    int       `json:"seat"`
	Name    string    `json:"name"`
	Card    deck.Rank `json:"card"`
	Redraw  bool      `json:"redraw"`
}

type ActionTakenData struct {
	TableID  string `json:"tableId"`
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	PotAfter int    `json:"potAfter"`
}

type ShowdownResultData struct {
	TableID    string            `json:"tableId"`
	HandID     string            `json:"handId"`
	WinnerSeat int               `json:"winnerSeat"`
	WinnerName string            `json:"winnerName"`
	Amount     int               `json:"amount"`
	Cards      map[int]deck.Rank `json:"cards,omitempty"`
	Refunds    map[int]int       `json:"refunds,omitempty"`
	Redraws    int               `json:"redraws"`
}

type HandFinishedData struct {
	TableID    string `json:"tableId"`
	HandID     string `json:"handId"`
	WinnerSeat int    `json:"winnerSeat"`
	WinnerName string `json:"winnerName"`
	Terminal   bool   `json:"terminal"`
}

type PlayerTimeoutData struct {
	TableID        string `json:"tableId"`
	PlayerName     string `json:"playerName"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Action         string `json:"action"`
}
