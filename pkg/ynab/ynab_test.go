package ynab

import (
	"errors"
	"testing"
	"time"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/agencyfin/pkg/csv"
)

type fakeLister struct {
	txs       []*transaction.Transaction
	err       error
	budgetID  string
	accountID string
	filter    *transaction.Filter
}

func (f *fakeLister) GetTransactionsByAccount(budgetID, accountID string, filter *transaction.Filter) ([]*transaction.Transaction, error) {
	f.budgetID, f.accountID, f.filter = budgetID, accountID, filter
	return f.txs, f.err
}

func ptr(s string) *string { return &s }

func day(y int, m time.Month, d int) api.Date {
	return api.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func TestToRows(t *testing.T) {
	txs := []*transaction.Transaction{
		{Date: day(2024, time.May, 2), Amount: 2500000, PayeeName: ptr("Acme Ltd"), Memo: ptr("Invoice 42")},
		{Date: day(2024, time.May, 3), Amount: -120550, PayeeName: ptr("Landlord")},
		{Date: day(2024, time.May, 4), Amount: -1000, Deleted: true},
		nil,
		{Date: day(2024, time.May, 5), Amount: 10, Memo: ptr("  ")},
	}

	rows := ToRows(txs)

	assert.Equal(t, []csv.Row{
		{"date": "2024-05-02", "description": "Acme Ltd - Invoice 42", "amount": "2500"},
		{"date": "2024-05-03", "description": "Landlord", "amount": "-120.55"},
		{"date": "2024-05-05", "description": "", "amount": "0.01"},
	}, rows)
}

func TestAccountRows(t *testing.T) {
	lister := &fakeLister{txs: []*transaction.Transaction{
		{Date: day(2024, time.June, 1), Amount: 1000, PayeeName: ptr("Client")},
	}}
	c := NewWithLister(lister)

	since := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	rows, err := c.AccountRows("budget", "account", since)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "budget", lister.budgetID)
	assert.Equal(t, "account", lister.accountID)
	require.NotNil(t, lister.filter)
	require.NotNil(t, lister.filter.Since)
	assert.True(t, since.Equal(lister.filter.Since.Time))

	_, err = c.AccountRows("budget", "account", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, lister.filter)
}

func TestAccountRowsError(t *testing.T) {
	c := NewWithLister(&fakeLister{err: errors.New("unauthorized")})

	_, err := c.AccountRows("b", "a", time.Time{})
	assert.ErrorContains(t, err, "unauthorized")
}
