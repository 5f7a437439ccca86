// Package tui renders the explorer in a terminal with bubbletea.
//
// The left pane lists the candidate blocks. Pressing enter selects one.
// The right pane shows the selection label, a spinner while loading, any error,
// and the block and receipt JSON in a scrollable viewport.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/pkg/blockexplorer"
)

const (
	listWidth     = 24
	chromeHeight  = 4
	defaultWidth  = 100
	defaultHeight = 30
)

type focus int

const (
	focusCandidates focus = iota
	focusDetail
)

// stateMsg delivers a snapshot pushed by the explorer.
type stateMsg blockexplorer.ViewState

// streamClosedMsg is sent when the explorer ends the subscription.
type streamClosedMsg struct{}

// operationDoneMsg reports the result of Initialize or Select.
type operationDoneMsg struct {
	op  string
	err error
}

// blockItem implements list.Item for a candidate block number.
type blockItem int64

func (i blockItem) Title() string       { return fmt.Sprintf(blockexplorer.BlockLabelFormat, int64(i)) }
func (i blockItem) Description() string { return "" }
func (i blockItem) FilterValue() string { return fmt.Sprint(int64(i)) }

// Model is the bubbletea model of the explorer screen.
type Model struct {
	ctx      context.Context
	explorer blockexplorer.Explorer
	updates  <-chan blockexplorer.ViewState
	cancel   func()

	state   blockexplorer.ViewState
	lastErr error
	focus   focus

	candidates list.Model
	spinner    spinner.Model
	detail     viewport.Model

	width  int
	height int
}

// NewModel creates the model and subscribes it to explorer. Call Close to end the subscription.
func NewModel(ctx context.Context, explorer blockexplorer.Explorer) Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	candidates := list.New(nil, delegate, listWidth, defaultHeight-chromeHeight)
	candidates.Title = "Blocks"
	candidates.SetShowStatusBar(false)
	candidates.SetFilteringEnabled(false)
	candidates.SetShowHelp(false)

	updates, cancel := explorer.Subscribe()

	m := Model{
		ctx:        ctx,
		explorer:   explorer,
		updates:    updates,
		cancel:     cancel,
		candidates: candidates,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle)),
		detail:     viewport.New(defaultWidth-listWidth-6, defaultHeight-chromeHeight),
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.applyState(explorer.State())
	return m
}

// Init implements tea.Model. It starts listening for snapshots and loads the candidate list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForState(m.updates),
		m.spinner.Tick,
		m.initialize(),
	)
}

// listenForState returns a tea.Cmd that blocks until the next snapshot arrives.
func listenForState(updates <-chan blockexplorer.ViewState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(state)
	}
}

func (m Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return operationDoneMsg{op: "initialize", err: m.explorer.Initialize(m.ctx)}
	}
}

func (m Model) selectBlock(blockNumber int64) tea.Cmd {
	return func() tea.Msg {
		return operationDoneMsg{op: "select", err: m.explorer.Select(m.ctx, blockNumber)}
	}
}

// Close ends the explorer subscription.
func (m Model) Close() {
	m.cancel()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateMsg:
		cmd := m.applyState(blockexplorer.ViewState(msg))
		return m, tea.Batch(cmd, listenForState(m.updates))

	case streamClosedMsg:
		return m, tea.Quit

	case operationDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, selection.ErrSuperseded) {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m, m.initialize()
	case "tab":
		if m.focus == focusCandidates {
			m.focus = focusDetail
		} else {
			m.focus = focusCandidates
		}
		return m, nil
	case "enter":
		if m.focus != focusCandidates {
			return m, nil
		}
		item, ok := m.candidates.SelectedItem().(blockItem)
		if !ok {
			return m, nil
		}
		return m, m.selectBlock(int64(item))
	}

	var cmd tea.Cmd
	if m.focus == focusCandidates {
		m.candidates, cmd = m.candidates.Update(msg)
	} else {
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// applyState stores the snapshot, rebuilds the candidate list when it changed and refreshes the detail pane.
func (m *Model) applyState(state blockexplorer.ViewState) tea.Cmd {
	var cmd tea.Cmd
	if !slices.Equal(m.state.Candidates, state.Candidates) || len(m.candidates.Items()) != len(state.Candidates) {
		items := make([]list.Item, len(state.Candidates))
		for i, n := range state.Candidates {
			items[i] = blockItem(n)
		}
		cmd = m.candidates.SetItems(items)
	}
	if state.SelectedBlock != nil {
		if idx := slices.Index(state.Candidates, *state.SelectedBlock); idx >= 0 {
			m.candidates.Select(idx)
		}
	}

	m.state = state
	m.detail.SetContent(renderDetail(state))
	m.detail.GotoTop()
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	bodyHeight := max(3, height-chromeHeight)
	m.candidates.SetSize(listWidth, bodyHeight)
	m.detail.Width = max(20, width-listWidth-6)
	m.detail.Height = max(3, bodyHeight-3)
}

// View implements tea.Model.
func (m Model) View() string {
	header := titleStyle.Render("Ethereum Block Explorer")

	left := paneStyle
	right := paneStyle
	if m.focus == focusCandidates {
		left = focusedPaneStyle
	} else {
		right = focusedPaneStyle
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.candidates.View()),
		right.Render(m.detailHeader()+"\n"+m.detail.View()),
	)

	help := helpStyle.Render("↑/↓ move • enter select • tab switch pane • r reload • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

func (m Model) detailHeader() string {
	lines := []string{labelStyle.Render(m.state.Label)}
	if m.state.Loading {
		lines = append(lines, m.spinner.View()+loadingStyle.Render(" Loading..."))
	}
	switch {
	case m.state.Error != nil:
		lines = append(lines, errorStyle.Render(m.state.Error.Message))
	case m.lastErr != nil:
		lines = append(lines, errorStyle.Render(m.lastErr.Error()))
	}
	return strings.Join(lines, "\n")
}

// renderDetail formats the block and receipt slots of state.
func renderDetail(state blockexplorer.ViewState) string {
	var b strings.Builder
	if state.Block == nil {
		if state.SelectedBlock == nil {
			b.WriteString(mutedStyle.Render("Pick a block on the left and press enter."))
		}
		return b.String()
	}

	b.WriteString(sectionStyle.Render("Block"))
	b.WriteString("\n")
	b.WriteString(toJSON(state.Block))
	b.WriteString("\n\n")

	switch state.ReceiptStatus {
	case blockexplorer.ReceiptAbsent:
		b.WriteString(mutedStyle.Render(blockexplorer.NoTransactionsText))
	case blockexplorer.ReceiptPresent:
		b.WriteString(sectionStyle.Render("First transaction receipt"))
		b.WriteString("\n")
		b.WriteString(toJSON(state.Receipt))
	}
	return b.String()
}

func toJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unrenderable: %v>", err)
	}
	return string(raw)
}

// Run starts the full-screen program and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, explorer blockexplorer.Explorer, opts ...tea.ProgramOption) error {
	m := NewModel(ctx, explorer)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
