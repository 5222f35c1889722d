package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	Revenue   Category = "revenue"
	Expense   Category = "expense"
	NetIncome Category = "netIncome"
	Asset     Category = "asset"
	Liability Category = "liability"
	Equity    Category = "equity"
)

// Policy decides how the matches of one category fold into its total.
type Policy int

const (
	// PolicyMax keeps the largest match.
	PolicyMax Policy = iota
	// PolicySum adds every match.
	PolicySum
	// PolicyTotalOrSum keeps the largest match whose label reads as a total
	// ("total assets") and falls back to the sum when no such label matched.
	PolicyTotalOrSum
	// PolicyLast keeps the last match.
	PolicyLast
)

// Rule describes how a category is aggregated and how its items are named.
type Rule struct {
	Policy      Policy
	TotalLabels []string
	KeepZero    bool
	KeyPrefix   string
	NamePrefix  string
}

var Rules = map[Category]Rule{
	Revenue:   {Policy: PolicyMax, KeyPrefix: "revenue", NamePrefix: "Revenue Item"},
	Expense:   {Policy: PolicySum, KeyPrefix: "expense", NamePrefix: "Expense Item"},
	NetIncome: {Policy: PolicyLast, KeepZero: true},
	Asset:     {Policy: PolicyTotalOrSum, TotalLabels: []string{"total assets"}, KeyPrefix: "asset", NamePrefix: "Asset Item"},
	Liability: {Policy: PolicyTotalOrSum, TotalLabels: []string{"total liabilities"}, KeyPrefix: "liability", NamePrefix: "Liability Item"},
	Equity:    {Policy: PolicyTotalOrSum, TotalLabels: []string{"total equity", "shareholders"}, KeepZero: true, KeyPrefix: "equity", NamePrefix: "Equity Item"},
}

// Pattern is one labelled-amount expression. The first capture group holds
// the amount, with optional thousands separators.
type Pattern struct {
	Category Category
	Expr     *regexp.Regexp
}

// Match is one hit of a pattern in a text.
type Match struct {
	Text  string
	Value decimal.Decimal
}

const amountExpr = `[:\s]*[£$]?\s*([,\d]+(?:\.\d{2})?)`

func labelled(category Category, label string) Pattern {
	return Pattern{Category: category, Expr: regexp.MustCompile(`(?i)` + label + amountExpr)}
}

func tabular(category Category, label string) Pattern {
	return Pattern{Category: category, Expr: regexp.MustCompile(`(?i)` + label + `\s+£?\s*([,\d]+(?:\.\d{2})?)`)}
}

var ProfitLossPatterns = []Pattern{
	labelled(Revenue, `(?:total\s+)?(?:gross\s+)?revenue`),
	labelled(Revenue, `(?:total\s+)?(?:net\s+)?sales`),
	labelled(Revenue, `turnover`),
	labelled(Revenue, `(?:gross\s+)?income`),
	labelled(Revenue, `revenue\s+from\s+operations`),
	labelled(Revenue, `turnover\s+and\s+other\s+income`),
	labelled(Revenue, `sales\s+revenue`),
	tabular(Revenue, `revenue`),
	tabular(Revenue, `sales`),

	labelled(Expense, `(?:total\s+)?(?:operating\s+)?expenses`),
	labelled(Expense, `(?:total\s+)?costs?`),
	labelled(Expense, `cost\s+of\s+(?:goods\s+)?sold`),
	labelled(Expense, `cost\s+of\s+sales`),
	labelled(Expense, `administrative\s+expenses`),
	labelled(Expense, `selling\s+expenses`),
	labelled(Expense, `staff\s+costs`),
	labelled(Expense, `employee\s+costs`),
	labelled(Expense, `wages\s+and\s+salaries`),
	labelled(Expense, `depreciation`),
	labelled(Expense, `rent`),
	labelled(Expense, `utilities`),
	labelled(Expense, `professional\s+fees`),
	labelled(Expense, `marketing`),
	labelled(Expense, `travel`),
	labelled(Expense, `insurance`),
	labelled(Expense, `other\s+expenses`),

	labelled(NetIncome, `net\s+(?:income|profit|earnings)`),
	labelled(NetIncome, `profit\s+(?:before|after)\s+tax`),
	labelled(NetIncome, `(?:total\s+)?comprehensive\s+income`),
	labelled(NetIncome, `profit\s+for\s+the\s+(?:year|period)`),
	labelled(NetIncome, `operating\s+profit`),
}

var BalanceSheetPatterns = []Pattern{
	labelled(Asset, `(?:total\s+)?current\s+assets`),
	labelled(Asset, `(?:total\s+)?non[.\s-]?current\s+assets`),
	labelled(Asset, `(?:total\s+)?fixed\s+assets`),
	labelled(Asset, `(?:cash\s+and\s+)?cash\s+equivalents`),
	labelled(Asset, `(?:trade\s+)?(?:accounts\s+)?receivables?`),
	labelled(Asset, `debtors`),
	labelled(Asset, `inventory`),
	labelled(Asset, `stock`),
	labelled(Asset, `property,?\s*plant\s+and\s+equipment`),
	labelled(Asset, `tangible\s+(?:fixed\s+)?assets`),
	labelled(Asset, `intangible\s+assets`),
	labelled(Asset, `total\s+assets`),

	labelled(Liability, `(?:total\s+)?current\s+liabilities`),
	labelled(Liability, `(?:total\s+)?non[.\s-]?current\s+liabilities`),
	labelled(Liability, `(?:total\s+)?long[.\s-]?term\s+(?:debt|liabilities)`),
	labelled(Liability, `(?:trade\s+)?(?:accounts\s+)?payables?`),
	labelled(Liability, `creditors`),
	labelled(Liability, `(?:short[.\s-]?term\s+)?debt`),
	labelled(Liability, `accrued\s+liabilities`),
	labelled(Liability, `provisions`),
	labelled(Liability, `total\s+liabilities`),

	labelled(Equity, `(?:shareholders?|stockholders?)\s+(?:equity|funds)`),
	labelled(Equity, `(?:total\s+)?equity`),
	labelled(Equity, `retained\s+(?:earnings|profits)`),
	labelled(Equity, `(?:share\s+|called[.\s-]?up\s+)?capital`),
	labelled(Equity, `reserves`),
	labelled(Equity, `profit\s+and\s+loss\s+account`),
}

// Match returns every hit of p in text, in order. Hits whose amount does
// not parse are dropped.
func (p Pattern) Match(text string) []Match {
	var out []Match
	for _, m := range p.Expr.FindAllStringSubmatch(text, -1) {
		value, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		out = append(out, Match{Text: m[0], Value: value})
	}
	return out
}

func (r Rule) isTotal(text string) bool {
	lower := strings.ToLower(text)
	for _, label := range r.TotalLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}
