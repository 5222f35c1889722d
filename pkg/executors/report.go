package executors

import (
	"fmt"

	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
	"github.com/yurifrl/agencyfin/pkg/plan"
)

// Status tells what applying a document will do to the stored reports.
type Status int

const (
	ToAdd Status = iota
	Replace
)

func (s Status) String() string {
	if s == Replace {
		return "replace"
	}
	return "add"
}

// Entry links a plan document with the report extracted from it.
type Entry struct {
	Document plan.Document
	Report   models.Report
	Status   Status
}

// Report is the dry-run result of a plan.
type Report struct {
	Items []Entry
}

// BuildReport marks every extracted report as a new slot or as a
// replacement for one already stored under the same fiscal year. Later
// documents in the plan replace earlier ones of the same type and year.
func BuildReport(docs []plan.Document, reports []models.Report, state models.State) *Report {
	seen := map[string]bool{}
	r := &Report{Items: make([]Entry, 0, len(reports))}
	for i, rep := range reports {
		d := docs[i]
		key := fmt.Sprintf("%d/%s", d.FiscalYear, rep.Type())

		status := ToAdd
		if seen[key] || state.HistoricalData[d.FiscalYear].Get(rep.Type()) != nil {
			status = Replace
		}
		seen[key] = true
		r.Items = append(r.Items, Entry{Document: d, Report: rep, Status: status})
	}
	return r
}

func (r *Report) AddCount() int     { return r.count(ToAdd) }
func (r *Report) ReplaceCount() int { return r.count(Replace) }

func (r *Report) count(s Status) int {
	n := 0
	for _, e := range r.Items {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Summary is a one-line description of a report's headline figures.
func Summary(rep models.Report, currency string) string {
	switch v := rep.(type) {
	case *models.ProfitLoss:
		revenue, expenses := v.RevenueTotal(), v.ExpenseTotal()
		return fmt.Sprintf("revenue %s, expenses %s, net %s",
			money.Format(revenue, currency), money.Format(expenses, currency), money.Format(revenue.Sub(expenses), currency))
	case *models.BalanceSheet:
		return fmt.Sprintf("assets %s, liabilities %s, equity %s",
			money.Format(v.AssetTotal(), currency), money.Format(v.LiabilityTotal(), currency), money.Format(v.EquityTotal(), currency))
	case *models.BankTransactions:
		return fmt.Sprintf("%d transactions, credits %s, debits %s",
			v.Summary.TotalTransactions, money.Format(v.Summary.TotalCredits, currency), money.Format(v.Summary.TotalDebits, currency))
	}
	return ""
}
