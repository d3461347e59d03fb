// Package tui provides an interactive terminal UI for minitodo using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

// ViewMode represents the current view state.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone              InputMode = iota
	InputSearch                      // Entering search text
	InputCreateTitle                 // Entering new todo title
	InputCreateDescription           // Entering new todo description
	InputEditTitle                   // Entering replacement title
)

// Status icons
const (
	iconNew  = "○"
	iconDone = "●"
)

// Layout constants
const (
	minSplitWidth = 80 // Minimum terminal width for split view
)

// FocusPane represents which pane is focused in split view.
type FocusPane int

const (
	FocusList FocusPane = iota
	FocusDetail
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx      context.Context
	todos    *todo.Service
	items    []model.Item // all items in queue order
	filtered []model.Item // items after filtering
	cursor   int
	viewMode ViewMode

	// Filter state
	showDone     bool
	filterSearch string

	// Input state
	inputMode    InputMode
	inputText    string
	inputLabel   string
	pendingTitle string

	// UI state
	width   int
	height  int
	err     error
	message string // temporary status message

	// Split view state
	focusPane    FocusPane
	detailScroll int
	jumpTo       int64 // select this ID after the next reload
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusNew:  lipgloss.Color("214"),
		model.StatusDone: lipgloss.Color("42"),
	}

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Content area padding
	contentPadding = 2
)

func statusIcon(s model.Status) string {
	if s == model.StatusDone {
		return iconDone
	}
	return iconNew
}

// New creates a new TUI model over the item service.
func New(ctx context.Context, todos *todo.Service) Model {
	return Model{
		ctx:      ctx,
		todos:    todos,
		viewMode: ViewList,
	}
}

// Messages
type itemsMsg struct {
	items []model.Item
	err   error
}

type actionMsg struct {
	message string
	jumpTo  int64
	err     error
}

func (m Model) loadItems() tea.Cmd {
	return func() tea.Msg {
		items, err := m.todos.List(m.ctx)
		return itemsMsg{items: items, err: err}
	}
}

// applyFilters filters items based on current filter state.
func (m *Model) applyFilters() {
	m.filtered = nil
	search := strings.ToLower(m.filterSearch)
	for _, item := range m.items {
		if item.Completed() && !m.showDone {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Title), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		m.filtered = append(m.filtered, item)
	}
	if m.jumpTo != 0 {
		for i, item := range m.filtered {
			if item.ID == m.jumpTo {
				m.cursor = i
				break
			}
		}
		m.jumpTo = 0
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m Model) selected() (model.Item, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return model.Item{}, false
	}
	return m.filtered[m.cursor], true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadItems()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.viewMode == ViewDetail && m.width >= minSplitWidth {
			m.viewMode = ViewList
		}
		return m, nil

	case itemsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.items = msg.items
		m.applyFilters()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
			m.jumpTo = msg.jumpTo
		}
		return m, m.loadItems()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != InputNone {
		return m.handleInputKey(msg)
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.inputText = ""
		m.pendingTitle = ""
		return m, nil

	case "enter":
		return m.submitInput()

	case "backspace":
		if len(m.inputText) > 0 {
			runes := []rune(m.inputText)
			m.inputText = string(runes[:len(runes)-1])
		}

	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.inputText += string(msg.Runes)
		case tea.KeySpace:
			m.inputText += " "
		}
	}

	if m.inputMode == InputSearch {
		m.filterSearch = m.inputText
		m.applyFilters()
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.inputText)
	mode := m.inputMode
	m.inputMode = InputNone
	m.inputText = ""

	switch mode {
	case InputSearch:
		m.filterSearch = text
		m.applyFilters()
		return m, nil

	case InputCreateTitle:
		if text == "" {
			return m, nil
		}
		m.pendingTitle = text
		return m.startInput(InputCreateDescription, "Description: ")

	case InputCreateDescription:
		title := m.pendingTitle
		m.pendingTitle = ""
		if text == "" {
			m.message = "Description is required"
			return m, nil
		}
		return m, func() tea.Msg {
			item, err := m.todos.Create(m.ctx, todo.CreateRequest{Title: title, Description: text})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Created task %d", *item.TaskNumber), jumpTo: item.ID}
		}

	case InputEditTitle:
		item, ok := m.selected()
		if !ok || text == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			if _, err := m.todos.Update(m.ctx, todo.UpdateRequest{ID: item.ID, Title: &text}); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Renamed %d", item.ID), jumpTo: item.ID}
		}
	}
	return m, nil
}

func (m Model) moveCursor(to int) Model {
	to = max(0, min(to, len(m.filtered)-1))
	if to != m.cursor {
		m.cursor = to
		m.detailScroll = 0
	}
	return m
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.width >= minSplitWidth && m.focusPane == FocusDetail {
		return m.handleDetailPaneKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.width >= minSplitWidth {
			m.focusPane = FocusDetail
		}

	case "up", "k":
		m = m.moveCursor(m.cursor - 1)
	case "down", "j":
		m = m.moveCursor(m.cursor + 1)
	case "g", "home":
		m = m.moveCursor(0)
	case "G", "end":
		m = m.moveCursor(len(m.filtered) - 1)

	case "enter", "l":
		if m.width < minSplitWidth && len(m.filtered) > 0 {
			m.viewMode = ViewDetail
		} else if m.width >= minSplitWidth {
			m.focusPane = FocusDetail
		}

	// Actions
	case "d":
		return m.doDone()
	case "D":
		return m.doDelete()
	case "N":
		return m.doNext()
	case "n":
		return m.startInput(InputCreateTitle, "New todo: ")
	case "e":
		if _, ok := m.selected(); ok {
			return m.startInput(InputEditTitle, "Title: ")
		}

	// Filtering
	case "/":
		return m.startInput(InputSearch, "Search: ")
	case "a":
		m.showDone = !m.showDone
		m.applyFilters()

	case "esc":
		if m.filterSearch != "" {
			m.filterSearch = ""
			m.applyFilters()
		} else {
			return m, tea.Quit
		}

	case "r":
		return m, m.loadItems()
	}

	return m, nil
}

// handleDetailPaneKey handles keys when detail pane is focused in split view.
func (m Model) handleDetailPaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "esc", "h":
		m.focusPane = FocusList
	case "up", "k":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case "down", "j":
		m.detailScroll++
	case "g", "home":
		m.detailScroll = 0
	case "G", "end":
		m.detailScroll = 9999
	case "d":
		return m.doDone()
	case "e":
		return m.startInput(InputEditTitle, "Title: ")
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "h", "backspace":
		m.viewMode = ViewList
	case "d":
		return m.doDone()
	case "e":
		return m.startInput(InputEditTitle, "Title: ")
	case "r":
		return m, m.loadItems()
	}
	return m, nil
}

func (m Model) startInput(mode InputMode, label string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.inputLabel = label
	m.inputText = ""
	return m, nil
}

func (m Model) doDone() (Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	if item.Completed() {
		m.message = "Already done"
		return m, nil
	}
	return m, func() tea.Msg {
		if _, err := m.todos.Complete(m.ctx, item.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Completed %s", item.Title)}
	}
}

func (m Model) doDelete() (Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		if _, err := m.todos.Delete(m.ctx, item.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("Deleted %s", item.Title)}
	}
}

func (m Model) doNext() (Model, tea.Cmd) {
	return m, func() tea.Msg {
		item, ok, err := m.todos.Next(m.ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		if !ok {
			return actionMsg{message: "All todos have been completed"}
		}
		return actionMsg{message: fmt.Sprintf("Next: %s", item.Title), jumpTo: item.ID}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	switch m.viewMode {
	case ViewList:
		b.WriteString(m.listView())
	case ViewDetail:
		b.WriteString(m.detailView(0))
	}

	if m.inputMode != InputNone {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.inputLabel + m.inputText + "█"))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

func (m Model) listView() string {
	if m.width >= minSplitWidth {
		return m.splitView()
	}
	return m.renderListPane(m.width-(contentPadding*2), max(10, m.height-8))
}

// splitView renders the list on the left and details on the right.
func (m Model) splitView() string {
	focusedColor := lipgloss.Color("39")
	unfocusedColor := lipgloss.Color("241")

	// Each pane has a one-char border on both sides plus a gap between panes.
	gap := 1
	borderChars := 4
	availableWidth := m.width - borderChars - gap - (contentPadding * 2)
	leftContentWidth := availableWidth / 2
	rightContentWidth := availableWidth - leftContentWidth
	contentHeight := max(10, m.height-4)

	leftLines := normalizeLines(strings.Split(m.renderListPane(leftContentWidth, contentHeight), "\n"), contentHeight, leftContentWidth)
	rightLines := normalizeLines(strings.Split(m.detailViewWithHeight(rightContentWidth, contentHeight), "\n"), contentHeight, rightContentWidth)

	leftColor, rightColor := focusedColor, unfocusedColor
	if m.focusPane == FocusDetail {
		leftColor, rightColor = unfocusedColor, focusedColor
	}

	leftBox := buildBorderedBox(leftLines, leftContentWidth, leftColor)
	rightBox := buildBorderedBox(rightLines, rightContentWidth, rightColor)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, strings.Repeat(" ", gap), rightBox)
}

// normalizeLines ensures the slice has exactly height lines, each padded to width.
func normalizeLines(lines []string, height, width int) []string {
	result := make([]string, height)
	for i := 0; i < height; i++ {
		if i < len(lines) {
			result[i] = padToWidth(lines[i], width)
		} else {
			result[i] = strings.Repeat(" ", width)
		}
	}
	return result
}

// buildBorderedBox creates a box with rounded borders around content lines.
func buildBorderedBox(lines []string, contentWidth int, borderColor lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(borderColor)
	horizontal := style.Render(strings.Repeat("─", contentWidth))
	vertical := style.Render("│")

	var b strings.Builder
	b.WriteString(style.Render("╭") + horizontal + style.Render("╮") + "\n")
	for _, line := range lines {
		b.WriteString(vertical + line + vertical + "\n")
	}
	b.WriteString(style.Render("╰") + horizontal + style.Render("╯"))
	return b.String()
}

// padToWidth pads s with spaces to the visible width, ignoring ANSI codes.
func padToWidth(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

func (m Model) renderListPane(width, height int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("minitodo"))
	b.WriteString(fmt.Sprintf("  %d/%d items", len(m.filtered), len(m.items)))
	if filters := m.activeFiltersString(); filters != "" {
		b.WriteString("  ")
		b.WriteString(filterStyle.Render(filters))
	}
	b.WriteString("\n\n")

	// Header takes 2 lines, footer 3.
	itemsHeight := max(3, height-5)
	rowWidth := max(40, width)

	if len(m.filtered) == 0 {
		b.WriteString("No todos match filters\n")
	} else {
		start := 0
		if m.cursor >= itemsHeight {
			start = m.cursor - itemsHeight + 1
		}
		end := min(start+itemsHeight, len(m.filtered))

		for i := start; i < end; i++ {
			item := m.filtered[i]
			if i == m.cursor {
				b.WriteString(selectedRowStyle.Width(rowWidth).Render(formatItemLine(item, rowWidth, false)))
			} else {
				b.WriteString(lipgloss.NewStyle().Width(rowWidth).Render(formatItemLine(item, rowWidth, true)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  enter:detail  d:done D:delete N:next n:new e:edit"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("/:search a:show done  r:refresh q:quit"))
	return b.String()
}

// formatItemLine renders "icon number title". Styled lines color the icon and
// dim the number; the selected row is plain so one highlight covers it.
func formatItemLine(item model.Item, width int, styled bool) string {
	icon := statusIcon(item.Status)
	number := "   -"
	if item.TaskNumber != nil {
		number = fmt.Sprintf("%4d", *item.TaskNumber)
	}
	if styled {
		icon = lipgloss.NewStyle().Foreground(statusColors[item.Status]).Render(icon)
		number = dimStyle.Render(number)
	}

	titleWidth := max(20, width-8)
	return fmt.Sprintf("%s %s  %s", icon, number, truncate(item.Title, titleWidth))
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

func (m Model) activeFiltersString() string {
	var parts []string
	if m.showDone {
		parts = append(parts, "all")
	}
	if m.filterSearch != "" {
		parts = append(parts, "search:\""+m.filterSearch+"\"")
	}
	return strings.Join(parts, " ")
}

// detailView renders the detail pane at full terminal width.
func (m Model) detailView(width int) string {
	return m.detailViewWithHeight(width, 0)
}

// detailViewWithHeight renders the detail pane. A zero width means full
// screen; otherwise lines are truncated and scrolled to fit.
func (m Model) detailViewWithHeight(width, height int) string {
	item, ok := m.selected()
	if !ok {
		return "No todo selected"
	}

	effectiveWidth := width
	if effectiveWidth == 0 {
		effectiveWidth = m.width - (contentPadding * 2)
	}
	effectiveWidth = max(40, effectiveWidth)
	fit := func(s string, n int) string {
		if width == 0 {
			return s
		}
		return truncate(s, n)
	}

	color := statusColors[item.Status]
	var lines []string
	lines = append(lines,
		lipgloss.NewStyle().Foreground(color).Render(statusIcon(item.Status))+" "+titleStyle.Render(fit(item.Title, effectiveWidth-4)),
		"",
		detailLabelStyle.Render("ID:       ")+fmt.Sprintf("%d", item.ID),
	)
	if item.TaskNumber != nil {
		lines = append(lines, detailLabelStyle.Render("Task:     ")+fmt.Sprintf("%d", *item.TaskNumber))
	}
	lines = append(lines, detailLabelStyle.Render("Status:   ")+lipgloss.NewStyle().Foreground(color).Render(string(item.Status)))
	lines = append(lines, detailLabelStyle.Render("Created:  ")+item.CreatedAt.Local().Format("2006-01-02 15:04"))
	if item.CompletedAt != nil {
		lines = append(lines, detailLabelStyle.Render("Done:     ")+item.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	if item.FilePath != nil {
		lines = append(lines, detailLabelStyle.Render("File:     ")+fit(*item.FilePath, effectiveWidth-10))
	}

	lines = append(lines, "", detailLabelStyle.Render("Description:"))
	for _, dl := range strings.Split(item.Description, "\n") {
		lines = append(lines, fit(dl, effectiveWidth))
	}

	if width == 0 {
		lines = append(lines, "", helpStyle.Render("esc:back  d:done e:edit  q:quit"))
		return strings.Join(lines, "\n")
	}

	visibleHeight := height
	if visibleHeight <= 0 {
		visibleHeight = len(lines)
	}
	scroll := min(m.detailScroll, max(0, len(lines)-visibleHeight))
	end := min(scroll+visibleHeight, len(lines))
	return strings.Join(lines[scroll:end], "\n")
}

// Run starts the TUI.
func Run(ctx context.Context, todos *todo.Service) error {
	p := tea.NewProgram(New(ctx, todos), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
