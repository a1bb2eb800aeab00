package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	userID     uuid.UUID
	state      importState
	filePicker filepicker.Model
	detected   string

	newParams    []transaction.CreateParams
	conflictList list.Model

	status string
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service, userID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		userID:        userID,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		m.detected = msg.detected
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d transactions (%s).", len(msg.result.Imported), m.detected)

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflictList = newConflictList(msg.result.Conflicts)
		m.conflictList.Title = fmt.Sprintf("Possible duplicates (%s), %d new rows will be imported", m.detected, len(m.newParams))
		m.state = importStateConflicts

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateConflicts:
		m.state = importStateFilePick
		m.newParams = nil

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		if item, ok := m.conflictList.SelectedItem().(conflictItem); ok {
			item.keep = !item.keep
			return m, m.conflictList.SetItem(idx, item)
		}

		return m, nil
	case "a", "n":
		keep := msg.String() == "a"
		items := m.conflictList.Items()

		for i, it := range items {
			item := it.(conflictItem)
			item.keep = keep
			items[i] = item
		}

		return m, m.conflictList.SetItems(items)
	case "enter":
		return m, m.confirmCmd(resolveConflicts(m.newParams, m.conflictList.Items()))
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		"Select a CSV export or bank statement:\n\n"+m.filePicker.View(),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to import another file)")
	}

	return style.Render(okStyle(m.status) + "\n\n(Esc to import another file)")
}

// Messages

type importResultMsg struct {
	result   *transaction.ImportResult
	detected string
	err      error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		parsed, err := m.importService.Import(f)
		if err != nil {
			return importResultMsg{err: err}
		}

		detected := fmt.Sprintf("%s, %s", parsed.Profile, parsed.Charset)

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.txService.ImportBatch(ctx, m.userID, parsed.Params)
		if err != nil {
			return importResultMsg{detected: detected, err: err}
		}

		return importResultMsg{result: result, detected: detected}
	}
}

func (m ImportModel) confirmCmd(params []transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, m.userID, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

// conflictItem is an incoming row that looks like an existing transaction.
// keep marks it for import despite the match.
type conflictItem struct {
	conflict transaction.Conflict
	keep     bool
}

func (i conflictItem) Title() string {
	box := "[ ]"
	if i.keep {
		box = "[x]"
	}

	in := i.conflict.Incoming

	return fmt.Sprintf("%s %s  %s  %s %s", box, FormatDate(in.Date), FormatAmount(in.Amount), in.Type, in.Payee)
}

func (i conflictItem) Description() string {
	ex := i.conflict.Existing

	return fmt.Sprintf("    existing: %s  %s  %s  %s", FormatDate(ex.Date), FormatAmount(ex.Amount), ex.Payee, ex.Note)
}

func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Payee }

func newConflictList(conflicts []transaction.Conflict) list.Model {
	items := make([]list.Item, len(conflicts))
	for i, c := range conflicts {
		items[i] = conflictItem{conflict: c}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// resolveConflicts returns the rows to create: every new row plus the
// conflicting rows marked to keep.
func resolveConflicts(newParams []transaction.CreateParams, items []list.Item) []transaction.CreateParams {
	params := append([]transaction.CreateParams(nil), newParams...)

	for _, it := range items {
		if item, ok := it.(conflictItem); ok && item.keep {
			params = append(params, item.conflict.Incoming)
		}
	}

	return params
}
