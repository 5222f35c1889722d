package ynab

import (
	"fmt"
	"strings"
	"time"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/budget"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/csv"
)

const dateLayout = "2006-01-02"

// TransactionLister is the slice of the YNAB transaction service the bank
// feed needs.
type TransactionLister interface {
	GetTransactionsByAccount(budgetID, accountID string, f *transaction.Filter) ([]*transaction.Transaction, error)
}

// Client reads account activity from YNAB and hands it over as bank rows.
type Client struct {
	client       ynab.ClientServicer
	transactions TransactionLister
}

func New(token string) *Client {
	c := ynab.NewClient(token)
	return &Client{client: c, transactions: c.Transaction()}
}

// NewWithLister builds a client that only reads transactions, which is all
// an import needs.
func NewWithLister(l TransactionLister) *Client {
	return &Client{transactions: l}
}

func (c *Client) Budget() *budget.Service {
	return c.client.Budget()
}

func (c *Client) Account() *account.Service {
	return c.client.Account()
}

// AccountRows fetches the account's transactions since the given day.
// A zero since fetches everything.
func (c *Client) AccountRows(budgetID, accountID string, since time.Time) ([]csv.Row, error) {
	var filter *transaction.Filter
	if !since.IsZero() {
		filter = &transaction.Filter{Since: &api.Date{Time: since}}
	}
	txs, err := c.transactions.GetTransactionsByAccount(budgetID, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch ynab transactions: %w", err)
	}
	return ToRows(txs), nil
}

// ToRows converts YNAB transactions to rows with the date, description and
// amount headers of a bank export. Deleted transactions are dropped and
// milliunit amounts become signed decimals.
func ToRows(txs []*transaction.Transaction) []csv.Row {
	rows := make([]csv.Row, 0, len(txs))
	for _, tx := range txs {
		if tx == nil || tx.Deleted {
			continue
		}
		rows = append(rows, csv.Row{
			"date":        tx.Date.Format(dateLayout),
			"description": description(tx),
			"amount":      decimal.New(tx.Amount, -3).String(),
		})
	}
	return rows
}

func description(tx *transaction.Transaction) string {
	var parts []string
	if tx.PayeeName != nil && strings.TrimSpace(*tx.PayeeName) != "" {
		parts = append(parts, strings.TrimSpace(*tx.PayeeName))
	}
	if tx.Memo != nil && strings.TrimSpace(*tx.Memo) != "" {
		parts = append(parts, strings.TrimSpace(*tx.Memo))
	}
	return strings.Join(parts, " - ")
}
