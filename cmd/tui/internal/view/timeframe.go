package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Timeframe is a predefined or custom date range.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeLastYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeLastYear:
		return "Last Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// dateRange returns the first and last calendar day of tf relative to now.
func (t Timeframe) dateRange(now time.Time) (time.Time, time.Time) {
	switch t {
	case TimeframeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case TimeframeLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case TimeframeThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	case TimeframeLastYear:
		return time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}, time.Time{}
}

// TimeframeSelectedMsg carries an inclusive range of calendar days.
// Start and End are zero values when All is true.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// customRange holds the huh bindings for a custom range.
type customRange struct {
	Start string
	End   string
}

func (r *customRange) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(r.Start))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(r.End))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date before start date")
	}

	return start, end, nil
}

func (r *customRange) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From").Placeholder("YYYY-MM-DD").CharLimit(10).
				Validate(validDate).Value(&r.Start),
			huh.NewInput().Title("To").Placeholder("YYYY-MM-DD").CharLimit(10).
				Validate(func(s string) error {
					_, _, err := (&customRange{Start: r.Start, End: s}).parse()
					return err
				}).Value(&r.End),
		),
	).WithWidth(40).WithShowHelp(false)
}

// TimeframePicker lets the user pick a preset range or type a custom one.
// Presets before first are not offered.
type TimeframePicker struct {
	first  Timeframe
	cursor Timeframe

	custom *customRange
	form   *huh.Form
}

func NewTimeframePicker(first Timeframe) TimeframePicker {
	return TimeframePicker{first: first, cursor: first}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.form != nil {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > m.first {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < TimeframeCustom {
			m.cursor++
		}
	case "enter":
		return m.choose(time.Now())
	}

	return m, nil
}

func (m TimeframePicker) choose(now time.Time) (TimeframePicker, tea.Cmd) {
	switch m.cursor {
	case TimeframeCustom:
		m.custom = &customRange{}
		m.form = m.custom.form()
		return m, m.form.Init()
	case TimeframeAll:
		return m, selectRange(TimeframeSelectedMsg{All: true})
	}

	start, end := m.cursor.dateRange(now)
	return m, selectRange(TimeframeSelectedMsg{Start: start, End: end})
}

func (m TimeframePicker) updateCustom(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil

	start, end, err := m.custom.parse()
	if err != nil {
		return m, nil
	}

	return m, selectRange(TimeframeSelectedMsg{Start: start, End: end})
}

func selectRange(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	if m.form != nil {
		return "Custom range\n\n" + m.form.View() + "\n(Esc to pick a preset)"
	}

	var b strings.Builder
	b.WriteString("Timeframe\n\n")

	for tf := m.first; tf <= TimeframeCustom; tf++ {
		line := fmt.Sprintf("  %s", tf)
		if tf == m.cursor {
			line = activeStyle(fmt.Sprintf("> %s", tf))
		}

		b.WriteString(line + "\n")
	}

	b.WriteString("\n(↑/↓ to move, Enter to select, Esc to back)")

	return b.String()
}

// IsSelecting reports whether the preset list, not the custom form, has focus.
func (m TimeframePicker) IsSelecting() bool {
	return m.form == nil
}

// Reset returns the picker to its first preset.
func (m *TimeframePicker) Reset() {
	m.cursor = m.first
	m.custom = nil
	m.form = nil
}
