// Package playground is an interactive query editor. It compiles the query
// on every keystroke, shows its canonical text and SQL, and lists the
// matching records of the selected entity.
package playground

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/sieve/internal/engine"
	"github.com/zjrosen/sieve/internal/keys"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/query"
)

const defaultLimit = 20

// Config configures the playground.
type Config struct {
	Engine *engine.Engine
	// Entity is the entity selected at start, the first one when empty.
	Entity string
	// Query is the initial query text.
	Query string
	// Limit caps the listed records.
	Limit int
	// Notifications, when set, are shown in the footer as they arrive.
	Notifications *pubsub.Broker[notify.Notification]
}

// Model is the playground Bubble Tea model.
type Model struct {
	ctx      context.Context
	eng      *engine.Engine
	entities []engine.EntityType
	selected int
	limit    int

	input      textinput.Model
	compiled   engine.Compiled
	compileErr error
	showFields bool
	help       help.Model

	// seq identifies the latest search so stale results are dropped.
	seq       int
	results   []any
	searchErr error

	notifications *pubsub.ContinuousListener[notify.Notification]
	logs          *log.LogListener
	lastNotice    string
	lastLog       string

	width    int
	height   int
	quitting bool
}

// searchResultMsg carries the records of search seq.
type searchResultMsg struct {
	seq     int
	records []any
	err     error
}

// New creates a playground model. Listeners stop when ctx is done.
func New(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = `"Status" is "Open" order by "Priority" desc`
	input.SetValue(cfg.Query)
	input.Focus()

	m := Model{
		ctx:      ctx,
		eng:      cfg.Engine,
		entities: engine.Entities(),
		limit:    cfg.Limit,
		input:    input,
		help:     help.New(),
		width:    80,
		height:   24,
	}
	if m.limit <= 0 {
		m.limit = defaultLimit
	}
	for i, t := range m.entities {
		if t.Name() == cfg.Entity {
			m.selected = i
		}
	}
	if cfg.Notifications != nil {
		m.notifications = pubsub.NewContinuousListener(ctx, cfg.Notifications, pubsub.MatchedEvent)
	}
	m.logs = log.NewListener(ctx)
	if cfg.Query != "" {
		m, _ = m.compile()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.notifications != nil {
		cmds = append(cmds, m.notifications.Listen())
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	if m.compiled != nil {
		cmds = append(cmds, m.search(m.seq, m.Entity(), m.input.Value()))
	}
	return tea.Batch(cmds...)
}

// Entity returns the selected entity type name.
func (m Model) Entity() string {
	return m.entities[m.selected].Name()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case searchResultMsg:
		if msg.seq == m.seq {
			m.results = msg.records
			m.searchErr = msg.err
		}
		return m, nil

	case pubsub.Event[notify.Notification]:
		m.lastNotice = msg.Payload.String()
		return m, m.notifications.Listen()

	case log.LogEvent:
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i, t := range m.entities {
			if z := zone.Get(entityZoneID(t.Name())); z != nil && z.InBounds(msg) && i != m.selected {
				m.selected = i
				return m.compile()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Playground.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Playground.NextEntity):
		m.selected = (m.selected + 1) % len(m.entities)
		return m.compile()
	case key.Matches(msg, keys.Playground.PrevEntity):
		m.selected = (m.selected + len(m.entities) - 1) % len(m.entities)
		return m.compile()
	case key.Matches(msg, keys.Playground.ToggleFields):
		m.showFields = !m.showFields
		return m, nil
	case key.Matches(msg, keys.Playground.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Playground.Clear):
		if m.input.Value() == "" {
			return m, nil
		}
		m.input.Reset()
		return m.compile()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	var search tea.Cmd
	m, search = m.compile()
	return m, tea.Batch(cmd, search)
}

// compile compiles the current input and starts a search when it
// compiles.
func (m Model) compile() (Model, tea.Cmd) {
	m.seq++
	m.compiled, m.compileErr = m.eng.Compile(m.ctx, m.Entity(), m.input.Value())
	if m.compileErr != nil {
		log.Debug(log.CatQuery, "Playground query does not compile", "entity", m.Entity(), "error", m.compileErr)
		m.results = nil
		m.searchErr = nil
		return m, nil
	}
	return m, m.search(m.seq, m.Entity(), m.input.Value())
}

func (m Model) search(seq int, entityName, input string) tea.Cmd {
	eng, ctx, limit := m.eng, m.ctx, m.limit
	return func() tea.Msg {
		res, err := eng.Search(ctx, entityName, input, limit)
		if err != nil {
			return searchResultMsg{seq: seq, err: err}
		}
		return searchResultMsg{seq: seq, records: res.Records}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	width := max(m.width, 20)
	rule := ruleStyle.Render(strings.Repeat("─", width))

	var sb strings.Builder
	sb.WriteString(renderEntities(m.entities, m.selected) + "\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(m.input.View() + "\n")
	if v := m.input.Value(); v != "" {
		sb.WriteString("  " + query.Highlight(v) + "\n")
	}
	sb.WriteString(rule + "\n")

	switch {
	case m.compileErr != nil:
		if caret, ok := errorCaret(m.input.Value(), m.compileErr); ok {
			sb.WriteString(caret + "\n")
		}
		sb.WriteString(errorStyle.Render(wordwrap.String(m.compileErr.Error(), width)) + "\n")
	case m.compiled != nil:
		sb.WriteString(headerStyle.Render("Canonical") + " " + query.Highlight(m.compiled.String()) + "\n")
		sb.WriteString(headerStyle.Render("SQL") + " " + mutedStyle.Render(wordwrap.String(renderSQL(m.compiled), width-4)) + "\n")
	}

	if m.showFields {
		sb.WriteString(rule + "\n")
		sb.WriteString(renderFields(m.entities[m.selected]))
	} else if m.compileErr == nil && m.compiled != nil {
		sb.WriteString(rule + "\n")
		sb.WriteString(m.renderResults(width))
	}

	sb.WriteString(rule + "\n")
	sb.WriteString(m.renderFooter(width))
	return zone.Scan(sb.String())
}

// errorCaret points at the column of a syntax error below the highlighted
// query line.
func errorCaret(input string, err error) (string, bool) {
	var syntaxErr *query.SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Pos < 0 || syntaxErr.Pos > len(input) {
		return "", false
	}
	return "  " + strings.Repeat(" ", uniseg.StringWidth(input[:syntaxErr.Pos])) + errorStyle.Render("^"), true
}

func (m Model) renderResults(width int) string {
	if m.searchErr != nil {
		return errorStyle.Render(m.searchErr.Error()) + "\n"
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Results (%d)", len(m.results))) + "\n")
	for _, r := range m.results {
		sb.WriteString(runewidth.Truncate("  "+fmt.Sprint(r), width, "…") + "\n")
	}
	return sb.String()
}

func (m Model) renderFooter(width int) string {
	var lines []string
	if m.lastNotice != "" {
		lines = append(lines, noticeStyle.Render(truncate.StringWithTail(m.lastNotice, uint(width), "…")))
	}
	if m.lastLog != "" {
		lines = append(lines, mutedStyle.Render(truncate.StringWithTail(m.lastLog, uint(width), "…")))
	}
	m.help.Width = width
	lines = append(lines, m.help.View(keys.Playground))
	return strings.Join(lines, "\n")
}

func renderSQL(q engine.Compiled) string {
	var parts []string
	if p := q.Predicate(); p.SQL != "" {
		parts = append(parts, "WHERE "+p.SQL)
	}
	parts = append(parts, "ORDER BY "+q.OrderBy())
	return strings.Join(parts, " ")
}
