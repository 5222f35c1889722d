package csv

import (
	"fmt"
	"strings"
	"time"

	"github.com/yurifrl/agencyfin/pkg/models"
)

// Template renders the example CSV for a report type. Section headings are
// "# ..." comment rows and sections are separated by empty rows; both are
// dropped again by Parse.
func Template(reportType models.ReportType, fiscalYear int, start models.Month) (string, error) {
	if !start.Valid() {
		return "", fmt.Errorf("%w: %d", models.ErrUnknownMonth, int(start))
	}
	var rows [][]string
	switch reportType {
	case models.ProfitLossReport:
		rows = profitLossTemplate(fiscalYear)
	case models.BalanceSheetReport:
		rows = balanceSheetTemplate(fiscalYear)
	case models.BankTransactionsReport:
		rows = bankTransactionsTemplate(fiscalYear, start)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnknownReportType, reportType)
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}
	return strings.Join(lines, "\n"), nil
}

// TemplateFilename is the download name for a template, e.g.
// "profit-loss-template-fy2024-2025.csv".
func TemplateFilename(reportType models.ReportType, fiscalYear int) string {
	return fmt.Sprintf("%s-template-fy%d-%d.csv", reportType.Slug(), fiscalYear, fiscalYear+1)
}

var blank = []string{"", "", "", ""}

func section(title string) []string {
	return []string{"# " + title, "", "", ""}
}

func profitLossTemplate(fiscalYear int) [][]string {
	return [][]string{
		{"Account", "Amount", "Type", "Notes"},
		section(fmt.Sprintf("REVENUE ITEMS - FY%d", fiscalYear)),
		{"Client Services Revenue", "50000", "revenue", "Main service revenue"},
		{"Consulting Revenue", "25000", "revenue", "Consulting fees"},
		{"Recurring Revenue", "30000", "revenue", "Monthly retainers"},
		{"Other Revenue", "5000", "revenue", "Miscellaneous income"},
		blank,
		section(fmt.Sprintf("EXPENSE ITEMS - FY%d", fiscalYear)),
		{"Salaries and Wages", "30000", "expense", "Employee salaries"},
		{"Office Rent", "12000", "expense", "Monthly office rent"},
		{"Marketing and Advertising", "8000", "expense", "Marketing campaigns"},
		{"Professional Fees", "5000", "expense", "Legal and accounting"},
		{"Utilities", "2400", "expense", "Office utilities"},
		{"Insurance", "3000", "expense", "Business insurance"},
		{"Travel and Meals", "4000", "expense", "Business travel"},
		{"Office Supplies", "1500", "expense", "Stationery and supplies"},
		{"Software Subscriptions", "6000", "expense", "Business software"},
		{"Equipment Depreciation", "3000", "expense", "Equipment depreciation"},
		{"Other Operating Expenses", "2000", "expense", "Miscellaneous costs"},
	}
}

func balanceSheetTemplate(fiscalYear int) [][]string {
	return [][]string{
		{"Account", "Amount", "Category", "Notes"},
		section(fmt.Sprintf("CURRENT ASSETS - FY%d", fiscalYear)),
		{"Cash and Cash Equivalents", "25000", "asset", "Bank accounts and cash"},
		{"Accounts Receivable", "15000", "asset", "Outstanding client invoices"},
		{"Prepaid Expenses", "3000", "asset", "Prepaid insurance and rent"},
		blank,
		section("NON-CURRENT ASSETS"),
		{"Office Equipment", "20000", "asset", "Computers and office equipment"},
		{"Furniture and Fixtures", "8000", "asset", "Office furniture"},
		{"Software Licenses", "5000", "asset", "Intangible assets"},
		blank,
		section("CURRENT LIABILITIES"),
		{"Accounts Payable", "8000", "liability", "Outstanding supplier bills"},
		{"Accrued Expenses", "4000", "liability", "Accrued salaries and utilities"},
		{"Short-term Loans", "5000", "liability", "Credit lines and short-term debt"},
		blank,
		section("NON-CURRENT LIABILITIES"),
		{"Long-term Debt", "15000", "liability", "Business loans and mortgages"},
		blank,
		section("EQUITY"),
		{"Share Capital", "10000", "equity", "Issued share capital"},
		{"Retained Earnings", "34000", "equity", "Accumulated profits"},
	}
}

// bankTransactionsTemplate dates every example inside the first month of
// the fiscal year.
func bankTransactionsTemplate(fiscalYear int, start models.Month) [][]string {
	first := time.Date(fiscalYear, time.Month(start), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := func(d int) string {
		return first.AddDate(0, 0, d-1).Format("2006-01-02")
	}
	return [][]string{
		{"Date", "Description", "Amount", "Type", "Category"},
		{day(1), "Client Payment - ABC Corp", "5000", "credit", "client_payment"},
		{day(2), "Office Rent Payment", "-1000", "debit", "office_expenses"},
		{day(3), "Salary Payment - Team", "-3000", "debit", "staff_costs"},
		{day(5), "Google Ads Payment", "-500", "debit", "marketing"},
		{day(10), "Client Payment - XYZ Ltd", "3000", "credit", "client_payment"},
		{day(15), "Software Subscription - Adobe", "-200", "debit", "other"},
		{day(20), "Consulting Fee Received", "2000", "credit", "client_payment"},
		{day(25), "Utilities Payment", "-150", "debit", "office_expenses"},
		{day(lastDay), "Bank Interest", "25", "credit", "other"},
	}
}
