package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/indianpoker/internal/client"
	"github.com/lox/indianpoker/internal/game"
	"github.com/lox/indianpoker/internal/server"
)

// Model is the Bubble Tea model for the interactive client. All game state
// arrives over the wire; the model never sees its own card.
type Model struct {
	client *client.Client
	logger *log.Logger
	msgs   chan *server.Message

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	view        *game.View
	seat        int
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// serverMsg wraps an incoming protocol message for the Bubble Tea loop.
type serverMsg struct {
	msg *server.Message
}

// New creates a TUI model bound to a connected client. It registers handlers
// for every server-to-client message type so the update loop sees them all.
func New(c *client.Client, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "tables | join <table> | start | bet <n> | call | raise <n> | fold | quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	m := &Model{
		client:      c,
		logger:      logger.WithPrefix("tui"),
		msgs:        make(chan *server.Message, 256),
		logViewport: vp,
		actionInput: ti,
		seat:        game.SpectatorSeat,
		focusedPane: 1,
	}

	forward := func(msg *server.Message) { m.msgs <- msg }
	for _, mt := range []server.MessageType{
		server.MessageTypeAuthResponse,
		server.MessageTypeError,
		server.MessageTypeTableJoined,
		server.MessageTypeTableLeft,
		server.MessageTypeTableList,
		server.MessageTypeTableState,
		server.MessageTypeHandStarted,
		server.MessageTypeCardDealt,
		server.MessageTypeActionTaken,
		server.MessageTypeShowdownResult,
		server.MessageTypeHandFinished,
		server.MessageTypePlayerTimeout,
	} {
		c.AddEventHandler(mt, forward)
	}

	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForServerMsg())
}

// waitForServerMsg returns a command that delivers the next server message.
func (m *Model) waitForServerMsg() tea.Cmd {
	return func() tea.Msg {
		return serverMsg{msg: <-m.msgs}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case serverMsg:
		m.handleServerMessage(msg.msg)
		cmds = append(cmds, m.waitForServerMsg())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processCommand(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processCommand parses user input and issues client requests.
func (m *Model) processCommand(input string) tea.Cmd {
	if input == "" {
		return nil
	}

	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)

	case "tables":
		err = m.client.ListTables()

	case "join":
		if len(args) != 1 {
			m.appendLog(ErrorStyle.Render("usage: join <table>"))
			return nil
		}
		err = m.client.JoinTable(args[0])

	case "leave":
		err = m.client.LeaveTable(m.client.GetTableID())

	case "start":
		err = m.client.StartTable(m.client.GetTableID())

	case "bet", "raise":
		if len(args) != 1 {
			m.appendLog(ErrorStyle.Render(fmt.Sprintf("usage: %s <amount>", cmd)))
			return nil
		}
		var amount int
		amount, err = strconv.Atoi(args[0])
		if err != nil {
			m.appendLog(ErrorStyle.Render("amount must be a number"))
			return nil
		}
		err = m.client.SendAction(cmd, amount)

	case "call", "fold":
		err = m.client.SendAction(cmd, 0)

	case "state":
		err = m.client.RequestState()

	default:
		m.appendLog(ErrorStyle.Render("unknown command: " + cmd))
		return nil
	}

	if err != nil {
		m.appendLog(ErrorStyle.Render(err.Error()))
	}
	return nil
}

// handleServerMessage turns protocol messages into log lines and state.
func (m *Model) handleServerMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeAuthResponse:
		var data server.AuthResponseData
		if json.Unmarshal(msg.Data, &data) == nil && data.Success {
			m.appendLog(SuccessStyle.Render("Authenticated as " + data.PlayerID))
		}

	case server.MessageTypeError:
		var data server.ErrorData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.appendLog(ErrorStyle.Render(fmt.Sprintf("error (%s): %s", data.Code, data.Message)))
		}

	case server.MessageTypeTableJoined:
		var data server.TableJoinedData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.client.SetTableID(data.TableID)
			m.seat = data.Seat
			m.appendLog(SuccessStyle.Render(fmt.Sprintf("Joined %s at seat %d", data.TableID, data.Seat)))
		}

	case server.MessageTypeTableLeft:
		m.client.SetTableID("")
		m.seat = game.SpectatorSeat
		m.view = nil
		m.appendLog(InfoStyle.Render("Left table"))

	case server.MessageTypeTableList:
		var data server.TableListData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.appendLog(InfoStyle.Render("Tables:"))
			for _, t := range data.Tables {
				m.appendLog(fmt.Sprintf("  %s (%d/%d players, ante %d, %s)",
					t.ID, t.PlayerCount, t.MaxPlayers, t.Ante, t.Status))
			}
		}

	case server.MessageTypeTableState:
		var data server.TableStateData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.view = &data.View
		}

	case server.MessageTypeHandStarted:
		var data server.HandStartedData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.appendLog(HeaderStyle.Render(fmt.Sprintf(" Hand %d ", data.HandNum)) +
				fmt.Sprintf(" ante %d, pot %d", data.Ante, data.Pot))
			m.refreshState()
		}

	case server.MessageTypeCardDealt:
		var data server.CardDealtData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.logCardDealt(data)
			m.refreshState()
		}

	case server.MessageTypeActionTaken:
		var data server.ActionTakenData
		if json.Unmarshal(msg.Data, &data) == nil {
			line := fmt.Sprintf("%s %s", data.Name, data.Action)
			if data.Amount > 0 {
				line += fmt.Sprintf(" %d", data.Amount)
			}
			line += fmt.Sprintf(" (pot %d)", data.PotAfter)
			m.appendLog(line)
			m.refreshState()
		}

	case server.MessageTypeShowdownResult:
		var data server.ShowdownResultData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.logShowdown(data)
			m.refreshState()
		}

	case server.MessageTypeHandFinished:
		var data server.HandFinishedData
		if json.Unmarshal(msg.Data, &data) == nil && data.Terminal {
			m.appendLog(HeaderStyle.Render(" Game over ") +
				SuccessStyle.Render(fmt.Sprintf(" %s takes the table", data.WinnerName)))
		}

	case server.MessageTypePlayerTimeout:
		var data server.PlayerTimeoutData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.appendLog(ErrorStyle.Render(fmt.Sprintf("%s timed out and was folded", data.PlayerName)))
		}
	}
}

func (m *Model) logCardDealt(data server.CardDealtData) {
	redraw := ""
	if data.Redraw {
		redraw = " (redraw)"
	}
	if data.Seat == m.seat {
		m.appendLog(HiddenCardStyle.Render(fmt.Sprintf("You were dealt a card you cannot see%s", redraw)))
		return
	}
	m.appendLog(fmt.Sprintf("%s shows %s%s", data.Name,
		CardStyle.Render(data.Card.String()), redraw))
}

func (m *Model) logShowdown(data server.ShowdownResultData) {
	if len(data.Cards) > 0 {
		var parts []string
		for seat, card := range data.Cards {
			label := card.String()
			if seat == m.seat {
				label = label + " (yours)"
			}
			parts = append(parts, label)
		}
		m.appendLog(InfoStyle.Render("Showdown: " + strings.Join(parts, ", ")))
	}
	line := fmt.Sprintf("%s wins %d", data.WinnerName, data.Amount)
	if data.Redraws > 0 {
		line += fmt.Sprintf(" after %d redraw(s)", data.Redraws)
	}
	m.appendLog(SuccessStyle.Render(line))
	for seat, refund := range data.Refunds {
		if m.view != nil && seat < len(m.view.Players) {
			m.appendLog(InfoStyle.Render(fmt.Sprintf("%s refunded %d", m.view.Players[seat].Name, refund)))
		}
	}
}

// refreshState requests a fresh view after anything that moves chips.
func (m *Model) refreshState() {
	if m.client.GetTableID() != "" {
		if err := m.client.RequestState(); err != nil {
			m.logger.Debug("State refresh failed", "error", err)
		}
	}
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.actionInput.View()
	actionHeight := lipgloss.Height(actionContent) + 2

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1))
	actionPane := actionStyle.Render(actionContent)

	sidebarWidth := 30
	sidebarHeight := max(m.height-actionHeight-2, 1)
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(sidebarHeight)
	sidebarPane := sidebarStyle.Render(m.renderSidebar())

	logWidth := max(m.width-sidebarWidth-6, 1)
	logHeight := sidebarHeight
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebar shows the table from this player's perspective: everyone
// else's card face up, their own hidden.
func (m *Model) renderSidebar() string {
	var b strings.Builder

	if m.view == nil {
		b.WriteString(InfoStyle.Render("No table state yet."))
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Try: tables"))
		return b.String()
	}

	v := m.view
	b.WriteString(PotStyle.Render(fmt.Sprintf("Pot: %d", v.Pot)))
	if v.CurrentBet > 0 {
		b.WriteString(PotStyle.Render(fmt.Sprintf("  Bet: %d", v.CurrentBet)))
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Hand %d, %s", v.HandNum, v.Phase)))
	b.WriteString("\n\n")

	for _, p := range v.Players {
		marker := "  "
		if p.Seat == v.Turn {
			marker = TurnStyle.Render("➤ ")
		}

		card := HiddenCardStyle.Render("[?]")
		if p.Seat != m.seat && p.Card != 0 {
			card = CardStyle.Render("[" + p.Card.String() + "]")
		}

		status := ""
		switch {
		case p.Folded:
			status = InfoStyle.Render(" folded")
		case p.AllIn:
			status = PotStyle.Render(" all-in")
		}

		name := p.Name
		if p.Seat == m.seat {
			name += " (you)"
		}
		b.WriteString(fmt.Sprintf("%s%s %s %d%s\n", marker, card, name, p.Chips, status))
	}

	if v.TurnName != "" {
		b.WriteString("\n")
		if v.Turn == m.seat {
			b.WriteString(TurnStyle.Render("Your turn"))
		} else {
			b.WriteString(InfoStyle.Render("Waiting on " + v.TurnName))
		}
	}

	return b.String()
}
