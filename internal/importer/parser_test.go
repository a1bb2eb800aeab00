package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Ledger(t *testing.T) {
	planned := uuid.New()
	account := uuid.New()

	csv := "date,type,amount,payee,payment_method,note,category_id,source_account_id,destination_account_id,planned_payment_id\n" +
		"2024-01-05,expense,21000.00,Landlord,transfer,[Auto] Rent,," + account.String() + ",," + planned.String() + "\n" +
		"2024-01-09,income,8608.52,Employer,,January salary,,,,\n"

	profile, params, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "ledger", profile)
	require.Len(t, params, 2)

	assert.Equal(t, date(2024, 1, 5), params[0].Date)
	assert.Equal(t, transaction.TypeExpense, params[0].Type)
	assert.Equal(t, "21000", params[0].Amount.String())
	assert.Equal(t, "Landlord", params[0].Payee)
	assert.Equal(t, "transfer", params[0].PaymentMethod)
	assert.Equal(t, "[Auto] Rent", params[0].Note)
	assert.Equal(t, &account, params[0].SourceAccountID)
	assert.Equal(t, &planned, params[0].PlannedPaymentID)
	assert.Nil(t, params[0].CategoryID)

	assert.Equal(t, transaction.TypeIncome, params[1].Type)
	assert.Equal(t, "8608.52", params[1].Amount.String())
	assert.Nil(t, params[1].PlannedPaymentID)
}

func TestParser_LedgerColumnOrder(t *testing.T) {
	csv := "Note,Amount,Date,Payee,Type,Extra\n" +
		"coffee,\"2,50\",2024-03-01,Café,expense,ignored\n"

	profile, params, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "ledger", profile)
	require.Len(t, params, 1)
	assert.Equal(t, "2.5", params[0].Amount.String())
	assert.Equal(t, "coffee", params[0].Note)
}

func TestParser_SignedStatement(t *testing.T) {
	csv := `Account statement;31-01-2026
Holder;JOHN DOE

Date;Description;Amount;Balance
30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;TFI Wise;8.608,52;52.532,78
15-01-2026;Zero movement;0,00;52.532,78
Total;;;
`

	profile, params, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "statement", profile)
	require.Len(t, params, 2)

	assert.Equal(t, date(2026, 1, 30), params[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", params[0].Payee)
	assert.Equal(t, "588.74", params[0].Amount.String())
	assert.Equal(t, transaction.TypeExpense, params[0].Type)

	assert.Equal(t, "8608.52", params[1].Amount.String())
	assert.Equal(t, transaction.TypeIncome, params[1].Type)
}

func TestParser_SplitStatement(t *testing.T) {
	csv := "Date,Description,Debit,Credit\n" +
		"02/02/2026,Supermarket,45.10,\n" +
		"03/02/2026,Refund,,12.00\n"

	profile, params, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "statement_split", profile)
	require.Len(t, params, 2)

	assert.Equal(t, transaction.TypeExpense, params[0].Type)
	assert.Equal(t, "45.1", params[0].Amount.String())
	assert.Equal(t, date(2026, 2, 2), params[0].Date)

	assert.Equal(t, transaction.TypeIncome, params[1].Type)
	assert.Equal(t, "12", params[1].Amount.String())
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "UnknownHeader", csv: "when,what\n2024-01-01,thing\n"},
		{name: "BadAmount", csv: "date,type,amount,payee\n2024-01-01,expense,lots,Shop\n"},
		{name: "BadType", csv: "date,type,amount,payee\n2024-01-01,gift,10,Shop\n"},
		{name: "BadID", csv: "date,type,amount,payee,category_id\n2024-01-01,expense,10,Shop,nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := importer.NewParser().Parse(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestService_ImportLatin1(t *testing.T) {
	content := "date;type;amount;payee;note\n2024-02-01;expense;3,20;Padaria;pão e café\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	require.NoError(t, err)

	result, err := importer.NewService().Import(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "ledger", result.Profile)
	assert.NotEqual(t, "UTF-8", string(result.Charset))
	require.Len(t, result.Params, 1)
	assert.Equal(t, "pão e café", result.Params[0].Note)
	assert.Equal(t, "3.2", result.Params[0].Amount.String())
}
