package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching CSV format found")

var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006", "2006/01/02"}

// Parser detects the delimiter and the profile of a CSV file from its header.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the name of the matched profile and one CreateParams per data row.
// Rows whose date cell is empty or not a date (preambles, totals) are skipped.
func (p *Parser) Parse(r io.Reader) (string, []transaction.CreateParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}

	for _, comma := range []rune{',', ';'} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		params, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return "", nil, err
		}

		return profile.Name, params, nil
	}

	return "", nil, ErrUnknownFormat
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.ToLower(strings.TrimSpace(cell)); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	var params []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(cell(row, cols, p.DateCol))
		if !ok {
			continue
		}

		amount, typ, ok, err := readAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if !ok {
			continue
		}

		param := transaction.CreateParams{
			Type:          typ,
			Amount:        amount,
			Payee:         cell(row, cols, p.PayeeCol),
			PaymentMethod: cell(row, cols, p.MethodCol),
			Note:          cell(row, cols, p.NoteCol),
			Date:          date,
		}

		ids := []struct {
			col string
			dst **uuid.UUID
		}{
			{p.CategoryCol, &param.CategoryID},
			{p.SourceCol, &param.SourceAccountID},
			{p.DestinationCol, &param.DestinationAccountID},
			{p.PlannedCol, &param.PlannedPaymentID},
		}

		for _, id := range ids {
			parsed, err := parseID(cell(row, cols, id.col))
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", rowNum, id.col, err)
			}

			*id.dst = parsed
		}

		params = append(params, param)
	}

	return params, nil
}

func readAmount(p *Profile, cols colIndex, row []string) (amount decimal.Decimal, typ transaction.Type, ok bool, err error) {
	switch p.AmountMode {
	case amountTyped:
		raw := cell(row, cols, p.AmountCol)
		if raw == "" {
			return amount, "", false, errors.New("missing amount")
		}

		if amount, err = ParseAmount(raw); err != nil {
			return amount, "", false, fmt.Errorf("invalid amount %q", raw)
		}

		typ = transaction.Type(strings.ToLower(cell(row, cols, p.TypeCol)))
		if !typ.Valid() {
			return amount, "", false, fmt.Errorf("invalid type %q", typ)
		}

		return amount.Abs(), typ, true, nil

	case amountSigned:
		return signedAmount(cell(row, cols, p.AmountCol), transaction.TypeIncome)

	case amountSplit:
		if amount, typ, ok, err = signedAmount(cell(row, cols, p.DebitCol), transaction.TypeExpense); ok || err != nil {
			return amount, transaction.TypeExpense, ok, err
		}

		return signedAmount(cell(row, cols, p.CreditCol), transaction.TypeIncome)
	}

	return amount, "", false, nil
}

// signedAmount parses raw; zero and empty cells are not transactions.
// Negative values are expenses, positive ones take positive.
func signedAmount(raw string, positive transaction.Type) (decimal.Decimal, transaction.Type, bool, error) {
	if raw == "" {
		return decimal.Decimal{}, "", false, nil
	}

	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.Decimal{}, "", false, fmt.Errorf("invalid amount %q", raw)
	}

	if amount.IsZero() {
		return decimal.Decimal{}, "", false, nil
	}

	if amount.IsNegative() {
		return amount.Neg(), transaction.TypeExpense, true, nil
	}

	return amount, positive, true, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// cell returns the trimmed value of the named column, or "" when the column
// is unnamed or the row is short.
func cell(row []string, cols colIndex, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
