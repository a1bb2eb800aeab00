package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var (
	typeFilters = []*transaction.Type{nil, new(transaction.TypeExpense), new(transaction.TypeIncome), new(transaction.TypeTransfer)}
	typeLabels  = []string{"All", "Expense", "Income", "Transfer"}
	dateLabels  = []string{"All Time", "This Month", "Last Month"}
)

type ListModel struct {
	CommonModel
	txService *transaction.Service

	state listState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	edit  *txEdit

	typeFilterIdx int
	dateFilterIdx int
	plannedOnly   bool

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string
}

type txEdit struct {
	Payee string
	Note  string
}

func NewListModel(txSvc *transaction.Service, userID uuid.UUID) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 9},
		{Title: "Amount", Width: 14},
		{Title: "Payee", Width: 24},
		{Title: "Note", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	return ListModel{
		txService: txSvc,
		table:     t,
		filter:    transaction.ListFilter{UserID: userID},
		loading:   true,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | t: type filter | d: date filter | p: planned only | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == listStateEdit {
		return m.updateEdit(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateLabels)
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		case "p":
			m.plannedOnly = !m.plannedOnly
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]
	m.edit = &txEdit{Payee: tx.Payee, Note: tx.Note}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("payee").
				Title("Payee").
				Value(&m.edit.Payee),
			huh.NewInput().
				Key("note").
				Title("Note").
				Value(&m.edit.Note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	planned := "off"
	if m.plannedOnly {
		planned = "on"
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s | [p] Planned only: %s",
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
		activeStyle(planned),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) applyFilter(now time.Time) {
	m.filter.Type = typeFilters[m.typeFilterIdx]

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *ListModel) refreshTable() {
	var shown []*transaction.Transaction

	for _, tx := range m.txs {
		if m.plannedOnly && tx.PlannedPaymentID == nil {
			continue
		}

		shown = append(shown, tx)
	}

	m.txs = shown

	rows := make([]table.Row, 0, len(shown))
	for _, tx := range shown {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			FormatAmount(tx.Amount),
			tx.Payee,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	err error
}

func (m ListModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	tx := *m.txs[idx]
	edit := *m.edit

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx.Payee = edit.Payee
		tx.Note = edit.Note

		return listSaveMsg{err: m.txService.Update(ctx, &tx)}
	}
}
