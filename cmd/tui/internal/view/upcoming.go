package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var upcomingWindows = []int{7, 14, 30, 90}

type UpcomingModel struct {
	CommonModel
	svc *planned.Service

	windowIdx int
	table     table.Model
	payments  []*planned.PlannedPayment
}

func NewUpcomingModel(svc *planned.Service) UpcomingModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Name", Width: 28},
			{Title: "Type", Width: 9},
			{Title: "Amount", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := UpcomingModel{svc: svc, windowIdx: 2, table: t}
	m.refresh()

	return m
}

func (m UpcomingModel) Title() string { return "Upcoming Payments" }

func (m UpcomingModel) ShortHelp() string {
	return "Esc: back | d: change window | r: refresh"
}

func (m UpcomingModel) Init() tea.Cmd {
	return nil
}

func (m UpcomingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "d":
			m.windowIdx = (m.windowIdx + 1) % len(upcomingWindows)
			m.refresh()

			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m UpcomingModel) View() string {
	var in, out decimal.Decimal

	for _, p := range m.payments {
		switch p.Type {
		case transaction.TypeIncome:
			in = in.Add(p.Amount)
		case transaction.TypeExpense:
			out = out.Add(p.Amount)
		}
	}

	header := fmt.Sprintf("[d] Next %s days | in %s | out %s",
		activeStyle(fmt.Sprint(upcomingWindows[m.windowIdx])), okStyle(FormatAmount(in)), errorStyle(FormatAmount(out)))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	))
}

func (m *UpcomingModel) refresh() {
	m.payments = m.svc.Upcoming(upcomingWindows[m.windowIdx])

	rows := make([]table.Row, 0, len(m.payments))
	for _, p := range m.payments {
		rows = append(rows, table.Row{
			FormatDatePtr(p.NextExecutionDate),
			p.Name,
			string(p.Type),
			FormatAmount(p.Amount),
		})
	}

	m.table.SetRows(rows)
}
