package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pennywise/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

type model struct {
	app     *app.App
	planned *planned.Service
	userID  uuid.UUID

	currentView View
	status      string

	plannedView  view.PlannedModel
	upcomingView view.UpcomingModel
	listView     view.ListModel
	importView   view.ImportModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewPlanned  View = 1
	ViewUpcoming View = 2
	ViewList     View = 3
	ViewImport   View = 4
	ViewExport   View = 5
)

type dueCheckedMsg struct {
	report *planned.ExecutionReport
	err    error
}

func initialModel(ctx context.Context) (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return model{}, err
	}

	userID, err := cfg.DemoUser()
	if err != nil {
		a.Close()
		return model{}, err
	}

	svc, err := a.Planned(ctx, userID)
	if err != nil {
		a.Close()
		return model{}, fmt.Errorf("loading planned payments: %w", err)
	}

	return model{
		app:         a,
		planned:     svc,
		userID:      userID,
		currentView: ViewMenu,
		status:      "Checking for due payments...",
	}, nil
}

// Init runs the due check once, right after the planned payments are loaded.
func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		report, err := m.app.RunDueCheck(ctx, m.planned, m.userID)

		return dueCheckedMsg{report: report, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case dueCheckedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Due check failed: %v", msg.err)
		} else {
			m.status = view.DescribeReport(msg.report)
		}

		return m, nil
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPlanned
				m.plannedView = view.NewPlannedModel(m.planned, m.app.Transactions, m.userID)

				return m, m.plannedView.Init()
			case "2":
				m.currentView = ViewUpcoming
				m.upcomingView = view.NewUpcomingModel(m.planned)

				return m, m.upcomingView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.app.Transactions, m.userID)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Transactions, m.app.Importer, m.userID)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export, m.userID)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPlanned:
		var newModel tea.Model
		newModel, cmd = m.plannedView.Update(msg)
		m.plannedView = newModel.(view.PlannedModel)
	case ViewUpcoming:
		var newModel tea.Model
		newModel, cmd = m.upcomingView.Update(msg)
		m.upcomingView = newModel.(view.UpcomingModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.app.Config.App.Name + "\n\n" +
				lipgloss.NewStyle().Faint(true).Render(m.status) + "\n\n" +
				"1. Planned Payments\n" +
				"2. Upcoming\n" +
				"3. Transactions\n" +
				"4. Import CSV\n" +
				"5. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewPlanned:
		current = m.plannedView
	case ViewUpcoming:
		current = m.upcomingView
	case ViewList:
		current = m.listView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title()),
		current.View(),
		lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp()),
	)
}

func main() {
	_ = godotenv.Load()

	m, err := initialModel(context.Background())
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}
	defer m.app.Close()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
