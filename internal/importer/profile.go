package importer

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountTyped means a positive amount plus a type column.
	amountTyped amountMode = iota
	// amountSigned means one signed column; negative values are expenses.
	amountSigned
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a supported CSV file. Column names
// are matched case-insensitively.
type Profile struct {
	Name       string
	DateCol    string
	PayeeCol   string
	AmountMode amountMode
	AmountCol  string
	TypeCol    string
	DebitCol   string
	CreditCol  string

	// Optional columns, read when present.
	MethodCol      string
	NoteCol        string
	CategoryCol    string
	SourceCol      string
	DestinationCol string
	PlannedCol     string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.PayeeCol}

	switch p.AmountMode {
	case amountTyped:
		cols = append(cols, p.AmountCol, p.TypeCol)
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// LedgerHeader is the header written by the export package.
var LedgerHeader = []string{
	"date", "type", "amount", "payee", "payment_method", "note",
	"category_id", "source_account_id", "destination_account_id", "planned_payment_id",
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:           "ledger",
		DateCol:        "date",
		PayeeCol:       "payee",
		AmountMode:     amountTyped,
		AmountCol:      "amount",
		TypeCol:        "type",
		MethodCol:      "payment_method",
		NoteCol:        "note",
		CategoryCol:    "category_id",
		SourceCol:      "source_account_id",
		DestinationCol: "destination_account_id",
		PlannedCol:     "planned_payment_id",
	},
	{
		Name:       "statement_split",
		DateCol:    "date",
		PayeeCol:   "description",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "statement",
		DateCol:    "date",
		PayeeCol:   "description",
		AmountMode: amountSigned,
		AmountCol:  "amount",
	},
}
