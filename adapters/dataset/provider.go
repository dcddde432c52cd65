package dataset

import (
	"context"
	"sync"
	"time"

	"promolift/domain/promo"
	"promolift/internal/errors"
	"promolift/internal/metrics"
	"promolift/ports"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Provider loads the table once and serves the same instance afterwards.
// Concurrent first callers share a single load. A failed load is not kept,
// so the next call retries.
type Provider struct {
	loader ports.TableLoader
	group  singleflight.Group

	mu    sync.RWMutex
	table *promo.Table
	gen   uint64 // bumped by Invalidate; loads from an older generation are not kept

	metrics *metrics.Metrics
	log     *logrus.Entry
}

var _ ports.DatasetProvider = (*Provider)(nil)

// NewProvider wraps a loader
func NewProvider(loader ports.TableLoader) *Provider {
	return &Provider{
		loader: loader,
		log:    logrus.WithField("component", "DatasetProvider"),
	}
}

// WithMetrics records every load attempt
func (p *Provider) WithMetrics(m *metrics.Metrics) *Provider {
	p.metrics = m
	return p
}

// Table returns the loaded table, loading it on first use
func (p *Provider) Table(ctx context.Context) (*promo.Table, error) {
	if t := p.cached(); t != nil {
		return t, nil
	}

	ch := p.group.DoChan(p.loader.Source(), func() (interface{}, error) {
		p.mu.RLock()
		t, gen := p.table, p.gen
		p.mu.RUnlock()
		if t != nil {
			return t, nil
		}
		// Detached from the caller so one cancelled request does not fail
		// the load for everyone waiting on it.
		start := time.Now()
		t, err := p.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			p.metrics.ObserveLoad(time.Since(start), 0, errors.GetCode(err))
			p.log.WithError(err).Error("dataset load failed")
			return nil, err
		}
		p.metrics.ObserveLoad(time.Since(start), t.Len(), metrics.ResultOK)
		p.mu.Lock()
		if p.gen == gen {
			p.table = t
		}
		p.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*promo.Table), nil
	}
}

// Invalidate drops the cached table; the next call loads the source again
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.table = nil
	p.gen++
	p.mu.Unlock()
	p.group.Forget(p.loader.Source())
	p.log.WithField("source", p.loader.Source()).Info("dataset cache invalidated")
}

// Loaded reports whether a table is cached
func (p *Provider) Loaded() bool {
	return p.cached() != nil
}

func (p *Provider) cached() *promo.Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// Static serves a table that was built in memory
type Static struct {
	table *promo.Table
}

// NewStatic wraps an already built table
func NewStatic(t *promo.Table) *Static {
	return &Static{table: t}
}

func (s *Static) Table(ctx context.Context) (*promo.Table, error) {
	return s.table, nil
}
