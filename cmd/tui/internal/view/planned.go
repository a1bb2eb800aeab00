package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

type plannedState int

const (
	plannedStateBrowse plannedState = iota
	plannedStateAdd
	plannedStateConfirmDelete
)

type PlannedModel struct {
	CommonModel
	svc    *planned.Service
	ledger planned.Ledger
	userID uuid.UUID

	state    plannedState
	table    table.Model
	payments []*planned.PlannedPayment
	form     *huh.Form
	draft    *paymentDraft

	status string
	err    error
}

func NewPlannedModel(svc *planned.Service, ledger planned.Ledger, userID uuid.UUID) PlannedModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 9},
		{Title: "Amount", Width: 14},
		{Title: "Schedule", Width: 22},
		{Title: "Next", Width: 12},
		{Title: "Last", Width: 12},
		{Title: "Active", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := PlannedModel{
		svc:    svc,
		ledger: ledger,
		userID: userID,
		table:  t,
	}
	m.refreshTable()

	return m
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func (m PlannedModel) Title() string { return "Planned Payments" }

func (m PlannedModel) ShortHelp() string {
	switch m.state {
	case plannedStateAdd:
		return "Navigate form | Esc: cancel"
	case plannedStateConfirmDelete:
		return "y: delete | any other key: cancel"
	}

	return "Esc: back | a: add | t: toggle active | x: delete | e: execute due | r: reload"
}

func (m PlannedModel) Init() tea.Cmd {
	return nil
}

func (m PlannedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case plannedChangedMsg:
		m.err = msg.err
		m.status = msg.status
		m.state = plannedStateBrowse
		m.form = nil
		m.table.Focus()
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case plannedStateAdd:
		return m.updateAdd(msg)
	case plannedStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m.updateBrowse(msg)
}

func (m PlannedModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.reloadCmd()
		case "a":
			return m.enterAddMode()
		case "t":
			if p := m.selected(); p != nil {
				return m, m.toggleCmd(p.ID)
			}

			return m, nil
		case "x":
			if m.selected() != nil {
				m.state = plannedStateConfirmDelete
			}

			return m, nil
		case "e":
			return m, m.executeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PlannedModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = plannedStateBrowse

	p := m.selected()
	if keyMsg.String() != "y" || p == nil {
		return m, nil
	}

	return m, m.deleteCmd(p.ID, p.Name)
}

func (m PlannedModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.draft = newPaymentDraft(m.svc.Today())
	m.form = m.draft.form()
	m.state = plannedStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m PlannedModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = plannedStateBrowse
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

	return m, m.addCmd(m.draft)
}

func (m PlannedModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	header := fmt.Sprintf("Today: %s | %d planned, %d due",
		activeStyle(FormatDate(m.svc.Today())), len(m.payments), len(m.svc.Due()))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == plannedStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(52).
			Render("New Planned Payment\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.state == plannedStateConfirmDelete {
		if p := m.selected(); p != nil {
			content += "\n\n" + errorStyle(fmt.Sprintf("Delete %q? (y/N)", p.Name))
		}
	}

	switch {
	case m.err != nil:
		content = errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n" + content
	case m.status != "":
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m PlannedModel) selected() *planned.PlannedPayment {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.payments) {
		return nil
	}

	return m.payments[idx]
}

func (m *PlannedModel) refreshTable() {
	m.payments = m.svc.List()

	rows := make([]table.Row, 0, len(m.payments))
	for _, p := range m.payments {
		active := "yes"
		if !p.IsActive {
			active = "no"
		}

		rows = append(rows, table.Row{
			p.Name,
			string(p.Type),
			FormatAmount(p.Amount),
			describeSchedule(p),
			FormatDatePtr(p.NextExecutionDate),
			FormatDatePtr(p.LastExecutedAt),
			active,
		})
	}

	m.table.SetRows(rows)
}

func describeSchedule(p *planned.PlannedPayment) string {
	if p.Frequency == planned.FrequencyOneTime {
		return "once"
	}

	switch p.RecurrenceType {
	case planned.RecurrenceWeekly:
		if len(p.WeeklyDays) == 0 {
			return "weekly"
		}

		names := make([]string, len(p.WeeklyDays))
		for i, d := range p.WeeklyDays {
			names[i] = d.String()[:3]
		}

		return "weekly " + strings.Join(names, ",")
	case planned.RecurrenceMonthly:
		if p.MonthlyInterval > 1 {
			return fmt.Sprintf("every %d months", p.MonthlyInterval)
		}

		return "monthly"
	}

	return string(p.RecurrenceType)
}

// Messages

type plannedChangedMsg struct {
	status string
	err    error
}

func (m PlannedModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.Load(ctx, m.userID); err != nil {
			return plannedChangedMsg{err: err}
		}

		return plannedChangedMsg{status: "Reloaded."}
	}
}

func (m PlannedModel) addCmd(d *paymentDraft) tea.Cmd {
	return func() tea.Msg {
		params, err := d.params(m.userID)
		if err != nil {
			return plannedChangedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.svc.Add(ctx, params)
		if err != nil {
			return plannedChangedMsg{err: err}
		}

		return plannedChangedMsg{status: fmt.Sprintf("Added %s, next on %s.", p.Name, FormatDatePtr(p.NextExecutionDate))}
	}
}

func (m PlannedModel) toggleCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.svc.ToggleActive(ctx, id)
		if err != nil {
			return plannedChangedMsg{err: err}
		}

		state := "paused"
		if p.IsActive {
			state = "resumed"
		}

		return plannedChangedMsg{status: fmt.Sprintf("%s %s.", p.Name, state)}
	}
}

func (m PlannedModel) deleteCmd(id uuid.UUID, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.Delete(ctx, id); err != nil {
			return plannedChangedMsg{err: err}
		}

		return plannedChangedMsg{status: fmt.Sprintf("Deleted %s.", name)}
	}
}

func (m PlannedModel) executeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.svc.CheckAndExecuteDue(ctx, m.userID, m.ledger)
		if err != nil {
			return plannedChangedMsg{err: err}
		}

		return plannedChangedMsg{status: DescribeReport(report)}
	}
}

// DescribeReport summarizes a due check in one line.
func DescribeReport(r *planned.ExecutionReport) string {
	if len(r.Executed) == 0 && len(r.Failed) == 0 {
		return "Nothing due."
	}

	names := make([]string, 0, len(r.Executed))
	for _, e := range r.Executed {
		names = append(names, e.Payment.Name)
	}

	s := fmt.Sprintf("Executed %d planned payment(s)", len(r.Executed))
	if len(names) > 0 {
		s += ": " + strings.Join(names, ", ")
	}

	if len(r.Failed) > 0 {
		s += fmt.Sprintf(" | %d failed, first error: %v", len(r.Failed), r.Failed[0].Err)
	}

	return s
}
