package executors

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/parser"
	"github.com/yurifrl/agencyfin/pkg/store"
)

// Feed pulls bank rows for an account, e.g. from YNAB.
type Feed interface {
	AccountRows(budgetID, accountID string, since time.Time) ([]csv.Row, error)
}

// Store is the part of store.Store an executor writes through.
type Store interface {
	State() models.State
	Dispatch(action store.Action) (models.State, error)
}

type Executor struct {
	logger *log.Logger
	parser *parser.Parser
	store  Store
	feed   Feed
}

// New builds an executor. feed may be nil when no plan document is sourced
// from YNAB.
func New(logger *log.Logger, parser *parser.Parser, store Store, feed Feed) *Executor {
	return &Executor{
		logger: logger,
		parser: parser,
		store:  store,
		feed:   feed,
	}
}
