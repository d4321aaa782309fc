package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/tally/internal/model"
)

// DashboardSource is the subset of the API the dashboard needs.
type DashboardSource interface {
	DashboardMetrics(ctx context.Context) (*model.MetricsSummary, error)
	ReportsDashboard(ctx context.Context, months int) (*model.ReportsDashboard, error)
	FundSummary(ctx context.Context) (*model.FundSummary, error)
	NetWorthSummary(ctx context.Context) (*model.NetWorthSummary, error)
}

// Dashboard part names, used as keys of Dashboard.Errors.
const (
	PartInvoices = "invoices"
	PartReports  = "reports"
	PartFunds    = "funds"
	PartNetWorth = "net worth"
)

// ProgressFunc is called as parts of a load finish.
// current is the number of parts done so far, total is the part count.
type ProgressFunc func(current, total int)

// Dashboard is the overview page. A nil section failed to load; its error
// is in Errors.
type Dashboard struct {
	Invoices *model.MetricsSummary
	Reports  *model.ReportsDashboard
	Funds    *model.FundSummary
	NetWorth *model.NetWorthSummary
	Errors   map[string]error
}

// Failed reports whether every part failed.
func (d *Dashboard) Failed() bool {
	return d.Invoices == nil && d.Reports == nil && d.Funds == nil && d.NetWorth == nil
}

// FirstError returns any one part error, or nil.
func (d *Dashboard) FirstError() error {
	for _, name := range []string{PartInvoices, PartReports, PartFunds, PartNetWorth} {
		if err := d.Errors[name]; err != nil {
			return err
		}
	}
	return nil
}

// LoadDashboard fetches the dashboard parts concurrently. A failing part
// does not cancel the others.
func LoadDashboard(ctx context.Context, src DashboardSource, months int, progressFn ProgressFunc) *Dashboard {
	d := &Dashboard{Errors: make(map[string]error)}
	var mu sync.Mutex
	var done atomic.Int64
	const total = 4

	finish := func(name string, err error) {
		if err != nil {
			mu.Lock()
			d.Errors[name] = err
			mu.Unlock()
		}
		n := done.Add(1)
		if progressFn != nil {
			progressFn(int(n), total)
		}
	}

	// Plain Group: no shared cancellation, every part runs to completion.
	var g errgroup.Group
	g.Go(func() error {
		m, err := src.DashboardMetrics(ctx)
		if err == nil {
			d.Invoices = m
		}
		finish(PartInvoices, err)
		return nil
	})
	g.Go(func() error {
		r, err := src.ReportsDashboard(ctx, months)
		if err == nil {
			d.Reports = r
		}
		finish(PartReports, err)
		return nil
	})
	g.Go(func() error {
		f, err := src.FundSummary(ctx)
		if err == nil {
			d.Funds = f
		}
		finish(PartFunds, err)
		return nil
	})
	g.Go(func() error {
		nw, err := src.NetWorthSummary(ctx)
		if err == nil {
			d.NetWorth = nw
		}
		finish(PartNetWorth, err)
		return nil
	})
	_ = g.Wait()
	return d
}
