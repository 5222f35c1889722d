package csv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/agencyfin/pkg/models"
)

var april = models.Month(time.April)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"Plain", "a,b,c", []string{"a", "b", "c"}},
		{"Quoted comma", `"Smith, John",100,x`, []string{"Smith, John", "100", "x"}},
		{"Empty fields", ",,", []string{"", "", ""}},
		{"Doubled quotes just toggle", `"say ""hi""",1`, []string{"say hi", "1"}},
		{"Single field", "alone", []string{"alone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParse(t *testing.T) {
	text := "Date, Description ,Amount\r\n" +
		"2024-04-01,Coffee,-3.50\r\n" +
		"\r\n" +
		"# comment,,\n" +
		",,\n" +
		"2024-04-02,\"Invoice 12, ACME\",100\n"

	rows, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{"date": "2024-04-01", "description": "Coffee", "amount": "-3.50"}, rows[0])
	assert.Equal(t, "Invoice 12, ACME", rows[1]["description"])
}

func TestParseShortRow(t *testing.T) {
	rows, err := Parse("a,b,c\n1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"a": "1", "b": "", "c": ""}, rows[0])
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(" \n\n")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRowGet(t *testing.T) {
	row := Row{"transaction date": "2024-01-01", "date": ""}
	assert.Equal(t, "2024-01-01", row.Get("date", "transaction_date", "transaction date"))
	assert.Equal(t, "", row.Get("missing"))
}

// TestTemplateRoundTrip verifies that every non-comment, non-empty template
// line comes back as one row keyed by the lower-cased header.
func TestTemplateRoundTrip(t *testing.T) {
	for _, reportType := range models.ReportTypes {
		t.Run(string(reportType), func(t *testing.T) {
			text, err := Template(reportType, 2024, april)
			require.NoError(t, err)

			lines := strings.Split(text, "\n")
			header := ParseLine(lines[0])
			expected := 0
			for _, line := range lines[1:] {
				trimmed := strings.Trim(line, ",")
				if trimmed == "" || strings.HasPrefix(trimmed, "#") {
					continue
				}
				expected++
			}

			rows, err := Parse(text)
			require.NoError(t, err)
			assert.Len(t, rows, expected)
			for _, row := range rows {
				for _, h := range header {
					_, ok := row[strings.ToLower(h)]
					assert.True(t, ok, "row is missing header %q", h)
				}
			}
		})
	}
}

func TestProfitLossTemplateRow(t *testing.T) {
	text, err := Template(models.ProfitLossReport, 2024, april)
	require.NoError(t, err)

	rows, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, Row{
		"account": "Client Services Revenue",
		"amount":  "50000",
		"type":    "revenue",
		"notes":   "Main service revenue",
	}, rows[0])
	assert.Contains(t, text, "# REVENUE ITEMS - FY2024")
}

func TestBankTemplateFollowsFiscalStart(t *testing.T) {
	text, err := Template(models.BankTransactionsReport, 2024, april)
	require.NoError(t, err)
	assert.Contains(t, text, "2024-04-02,Office Rent Payment,-1000,debit,office_expenses")
	assert.Contains(t, text, "2024-04-30,Bank Interest,25,credit,other")

	text, err = Template(models.BankTransactionsReport, 2024, models.Month(time.February))
	require.NoError(t, err)
	assert.Contains(t, text, "2024-02-29,Bank Interest")
}

func TestTemplateErrors(t *testing.T) {
	_, err := Template("nope", 2024, april)
	assert.ErrorIs(t, err, models.ErrUnknownReportType)

	_, err = Template(models.ProfitLossReport, 2024, models.Month(13))
	assert.ErrorIs(t, err, models.ErrUnknownMonth)
}

func TestTemplateFilename(t *testing.T) {
	assert.Equal(t, "balance-sheet-template-fy2024-2025.csv", TemplateFilename(models.BalanceSheetReport, 2024))
}

func TestWriteTransactions(t *testing.T) {
	txs := []models.Transaction{
		{ID: "t1", Date: "2024-04-01", Description: "Client, Ltd", Amount: decimal.NewFromInt(500), Type: models.Credit, Category: models.CategoryClientPayment},
		{ID: "t2", Date: "2024-04-02", Description: "Rent", Amount: decimal.NewFromInt(100), Type: models.Debit, Category: models.CategoryOfficeExpenses},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs, func(tx models.Transaction) bool { return tx.ID != "" }))

	rows, err := Parse(buf.String())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Client, Ltd", rows[0]["description"])
	assert.Equal(t, "-100", rows[1]["amount"])
}

func TestWriteLineItems(t *testing.T) {
	sections := map[string]models.LineItems{
		"revenue": {"r1": {Name: "Sales", Value: decimal.NewFromInt(10)}},
		"expense": {"e1": {Name: "Rent", Value: decimal.NewFromInt(4), Notes: "office"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLineItems(&buf, "Type", sections, []string{"revenue", "expense"}))
	assert.Equal(t, "Account,Amount,Type,Notes\nSales,10,revenue,\nRent,4,expense,office\n", buf.String())
}

func TestWriteReport(t *testing.T) {
	bs := &models.BalanceSheet{
		Assets: models.LineItems{"asset_1": {Name: "Cash", Value: decimal.NewFromInt(25000)}},
		Equity: models.LineItems{"equity_1": {Name: "Retained", Value: decimal.NewFromInt(-300)}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, bs))
	assert.Equal(t, "Account,Amount,Category,Notes\nCash,25000,asset,\nRetained,-300,equity,\n", buf.String())

	assert.ErrorIs(t, WriteReport(&buf, nil), models.ErrUnknownReportType)
}
