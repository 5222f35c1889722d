package executors

import (
	"fmt"

	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/plan"
	"github.com/yurifrl/agencyfin/pkg/store"
)

// Apply extracts every document and uploads it under its own fiscal year.
// All documents are extracted before anything is stored. When storing fails
// part way, the state is rolled back to what it was before Apply. The
// selected fiscal year is restored afterwards.
func (e *Executor) Apply(p *plan.Plan) error {
	e.logger.Debug("applying plan", "documents", len(p.Documents))

	reports, err := e.extractAll(p)
	if err != nil {
		return err
	}

	before := e.store.State()
	if err := e.storeAll(p, reports); err != nil {
		if _, rerr := e.store.Dispatch(store.LoadData{State: before, Defaults: before.Settings}); rerr != nil {
			e.logger.Error("failed to roll back plan", "err", rerr)
			return fmt.Errorf("%w (rollback failed: %w)", err, rerr)
		}
		e.logger.Warn("rolled back plan", "err", err)
		return err
	}
	return nil
}

func (e *Executor) storeAll(p *plan.Plan, reports []models.Report) error {
	current := e.store.State().Settings.CurrentFiscalYear
	defer func() {
		if _, err := e.store.Dispatch(store.ChangeFiscalYear{Year: current}); err != nil {
			e.logger.Warn("failed to restore fiscal year", "year", current, "err", err)
		}
	}()

	for i, rep := range reports {
		d := p.Documents[i]
		if _, err := e.store.Dispatch(store.ChangeFiscalYear{Year: d.FiscalYear}); err != nil {
			return err
		}
		meta := rep.Metadata()
		if _, err := e.store.Dispatch(store.UploadReport{Report: rep, FileName: meta.OriginalFileName}); err != nil {
			return fmt.Errorf("document %d: %w", i+1, err)
		}
		e.logger.Info("stored report", "type", rep.Type(), "fiscal_year", d.FiscalYear, "file", meta.OriginalFileName)
	}
	return nil
}
