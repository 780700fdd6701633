package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/events"
	"govsignal-engine/internal/fetch"
	"govsignal-engine/internal/group"
	"govsignal-engine/internal/metrics"
	"govsignal-engine/internal/persist"
	"govsignal-engine/internal/registry"
)

// ErrRunInProgress is returned when a run is requested while another
// one is still going. Runs never overlap.
var ErrRunInProgress = errors.New("pipeline: run already in progress")

// Summary is the outcome of one full run.
type Summary struct {
	RunID      string    `json:"runId"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Processed  int       `json:"processed"`
	Grouped    int       `json:"grouped"`
	Stored     int       `json:"stored"`
	Errors     []string  `json:"errors"`
}

// RunStatus is the inspection view of the pipeline for the API.
type RunStatus struct {
	Running       bool   `json:"running"`
	LastRunAt     string `json:"last_run_at"`
	LastOkAt      string `json:"last_ok_at"`
	LastError     string `json:"last_error"`
	LastProcessed int    `json:"last_processed"`
	LastGrouped   int    `json:"last_grouped"`
	LastStored    int    `json:"last_stored"`
}

// Pipeline drives one full cycle: select due sources, fetch them all,
// fold items into signals, persist, and keep the source bookkeeping
// straight.
type Pipeline struct {
	registry   registry.Registry
	fetcher    *fetch.Fetcher
	grouper    *group.Grouper
	gateway    *persist.Gateway
	hub        *events.Hub
	log        logrus.FieldLogger
	feedGroups []string

	running atomic.Bool
	status  atomic.Value // RunStatus
}

func New(reg registry.Registry, f *fetch.Fetcher, g *group.Grouper, gw *persist.Gateway, hub *events.Hub, feedGroups []string, log logrus.FieldLogger) *Pipeline {
	p := &Pipeline{
		registry:   reg,
		fetcher:    f,
		grouper:    g,
		gateway:    gw,
		hub:        hub,
		log:        log,
		feedGroups: feedGroups,
	}
	p.status.Store(RunStatus{})
	return p
}

func (p *Pipeline) Status() RunStatus {
	return p.status.Load().(RunStatus)
}

// Run executes one cycle. force bypasses per-source frequency gating,
// which is what a manual trigger wants. The returned Summary is
// non-nil whenever a run actually started.
func (p *Pipeline) Run(ctx context.Context, trigger string, force bool) (*Summary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	start := time.Now()
	sum := &Summary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: start.UTC(),
		Errors:    []string{},
	}
	log := p.log.WithFields(logrus.Fields{"run": sum.RunID, "trigger": trigger})

	st := p.Status()
	st.Running = true
	st.LastRunAt = sum.StartedAt.Format(time.RFC3339)
	p.status.Store(st)
	p.hub.Publish(events.New("", events.TypeRunStarted, map[string]any{
		"runId": sum.RunID, "trigger": trigger,
	}))

	fatal := p.run(ctx, log, sum, force)

	sum.DurationMS = time.Since(start).Milliseconds()
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	now := time.Now().UTC().Format(time.RFC3339)
	outcome := "ok"
	st = p.Status()
	st.Running = false
	st.LastProcessed = sum.Processed
	st.LastGrouped = sum.Grouped
	st.LastStored = sum.Stored
	switch {
	case fatal != nil:
		outcome = "error"
		st.LastError = fatal.Error()
	case len(sum.Errors) > 0:
		outcome = "partial"
		st.LastError = sum.Errors[0]
		st.LastOkAt = now
	default:
		st.LastError = ""
		st.LastOkAt = now
	}
	p.status.Store(st)
	metrics.RunsTotal.WithLabelValues(trigger, outcome).Inc()

	p.hub.Publish(events.New("", events.TypeRunCompleted, sum))

	if fatal != nil {
		log.WithError(fatal).Error("run failed")
		return sum, fatal
	}
	log.WithFields(logrus.Fields{
		"processed": sum.Processed,
		"grouped":   sum.Grouped,
		"stored":    sum.Stored,
		"errors":    len(sum.Errors),
	}).Info("run finished")
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context, log logrus.FieldLogger, sum *Summary, force bool) error {
	sources, err := p.registry.ActiveSources(ctx, p.feedGroups)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	now := time.Now().UTC()
	due := make([]*domain.FeedSource, 0, len(sources))
	for i := range sources {
		// enabled=false pauses scraping without retiring the
		// descriptor; force does not override it
		if !sources[i].Scraping.Enabled {
			continue
		}
		if force || sources[i].Due(now) {
			due = append(due, &sources[i])
		}
	}
	log.WithFields(logrus.Fields{"active": len(sources), "due": len(due)}).Debug("sources selected")
	if len(due) == 0 {
		return nil
	}

	outcomes := p.fetcher.FetchAll(ctx, due)

	// Bookkeeping wants one verdict per source, not one per language
	// URL: a source failed only when every one of its units failed.
	type verdict struct {
		ok       bool
		firstErr error
	}
	verdicts := make(map[string]*verdict, len(due))
	var items []domain.RawItem
	for _, o := range outcomes {
		v := verdicts[o.Source.ID]
		if v == nil {
			v = &verdict{}
			verdicts[o.Source.ID] = v
		}
		if o.Err != nil {
			if v.firstErr == nil {
				v.firstErr = o.Err
			}
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s %s: %v", o.Source.ID, o.URL, o.Err))
			continue
		}
		v.ok = true
		sum.Processed += len(o.Items)
		items = append(items, o.Items...)
	}

	fetchedAt := time.Now().UTC()
	for _, src := range due {
		v := verdicts[src.ID]
		if v == nil {
			continue // no URLs, nothing attempted
		}
		var bkErr error
		if v.ok {
			bkErr = p.registry.ReportFetchSuccess(ctx, src.ID, fetchedAt)
		} else {
			bkErr = p.registry.ReportFetchError(ctx, src.ID, v.firstErr, fetchedAt)
		}
		if bkErr != nil {
			log.WithError(bkErr).WithField("source", src.ID).Warn("source bookkeeping failed")
		}
	}

	signals := p.grouper.Group(items)
	sum.Grouped = len(signals)

	for _, sig := range signals {
		created, err := p.gateway.Persist(ctx, sig)
		if err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("store %s_%s: %v", sig.FeedGroup, sig.NoticeID, err))
			continue
		}
		sum.Stored++
		metrics.SignalsStored.WithLabelValues(sig.FeedGroup).Inc()
		if created {
			p.hub.Publish(events.New("", events.TypeSignalStored, map[string]any{
				"id":        sig.FeedGroup + "_" + sig.NoticeID,
				"feedGroup": sig.FeedGroup,
				"category":  sig.Category,
			}))
		}
	}
	return nil
}
