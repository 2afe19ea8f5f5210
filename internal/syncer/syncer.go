// Package syncer pulls leads and campaigns from the upstream automation
// backend into the local store on a schedule.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"leadawaker/internal/cache"
	"leadawaker/internal/ingest"
	"leadawaker/internal/logger"
	"leadawaker/internal/metrics"
	"leadawaker/internal/repo"
)

type Source interface {
	FetchLeads(ctx context.Context, accountID int) ([]ingest.Record, error)
	FetchCampaigns(ctx context.Context, accountID int) ([]ingest.Record, error)
}

// AccountResult summarises one account's pass.
type AccountResult struct {
	AccountID int    `json:"account_id"`
	Campaigns int    `json:"campaigns"`
	Leads     int    `json:"leads"`
	Snapshots int    `json:"snapshots"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Accounts   []AccountResult `json:"accounts"`
}

type Service struct {
	store   *repo.Store
	source  Source
	cache   cache.AgendaCache
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time

	mu   sync.Mutex // one pass at a time
	last *Report
}

func New(store *repo.Store, source Source, c cache.AgendaCache, m *metrics.Metrics, log logger.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		store:   store,
		source:  source,
		cache:   c,
		metrics: m,
		log:     log.With("component", "sync"),
		now:     time.Now,
	}
}

// Tick is the scheduler entry point. Errors are logged, never returned.
func (s *Service) Tick(ctx context.Context) {
	if _, err := s.RunAll(ctx); err != nil {
		s.log.Error("sync pass failed: %v", err)
	}
}

// RunAll syncs every active account. A failing account does not stop the others.
func (s *Service) RunAll(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{StartedAt: s.now().UTC()}
	ids, err := s.store.ListActiveAccountIDs(ctx)
	if err != nil {
		return report, err
	}

	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := s.syncAccount(ctx, id)
		if err != nil {
			res.Error = err.Error()
			errs = append(errs, fmt.Errorf("account %d: %w", id, err))
			s.metrics.ObserveSyncRun("error")
			s.log.Warn("sync account %d: %v", id, err)
		} else {
			s.metrics.ObserveSyncRun("ok")
		}
		report.Accounts = append(report.Accounts, res)
	}

	report.FinishedAt = s.now().UTC()
	s.metrics.ObserveSyncDuration(report.FinishedAt.Sub(report.StartedAt))
	s.last = &report
	s.log.Info("sync pass finished: %d accounts, %d errors", len(ids), len(errs))
	return report, errors.Join(errs...)
}

// SyncAccount runs a single account outside the schedule.
func (s *Service) SyncAccount(ctx context.Context, accountID int) (AccountResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncAccount(ctx, accountID)
}

// LastReport is nil until the first pass completes.
func (s *Service) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Service) syncAccount(ctx context.Context, accountID int) (AccountResult, error) {
	res := AccountResult{AccountID: accountID}
	today := s.now().UTC().Format("2006-01-02")

	campaigns, err := s.source.FetchCampaigns(ctx, accountID)
	if err != nil {
		return res, fmt.Errorf("fetch campaigns: %w", err)
	}

	// upstream campaign id -> local id, for re-pointing lead.campaign_id
	localCampaign := make(map[string]int, len(campaigns))
	for _, rec := range campaigns {
		c := ingest.NormalizeCampaign(rec, accountID)
		if c.ExternalID == nil {
			s.log.Debug("skipping campaign without id for account %d", accountID)
			continue
		}
		id, err := s.store.UpsertCampaign(ctx, c)
		if err != nil {
			return res, err
		}
		localCampaign[*c.ExternalID] = id
		res.Campaigns++

		snap := ingest.NormalizeCampaignSnapshot(rec, id)
		snap.SnapshotDate = today
		_, err = s.store.RecordCampaignSnapshot(ctx, snap)
		switch {
		case err == nil:
			res.Snapshots++
		case !errors.Is(err, repo.ErrConflict):
			return res, err
		}
	}

	leads, err := s.source.FetchLeads(ctx, accountID)
	if err != nil {
		return res, fmt.Errorf("fetch leads: %w", err)
	}
	for _, rec := range leads {
		lead := ingest.NormalizeLead(rec, accountID)
		columns := ingest.PresentLeadColumns(rec)
		if lead.CampaignID != nil {
			if local, ok := localCampaign[strconv.Itoa(*lead.CampaignID)]; ok {
				lead.CampaignID = &local
			} else {
				lead.CampaignID = nil
				columns = columns.Without("campaign_id")
			}
		}
		if _, err := s.store.UpsertLead(ctx, lead, columns); err != nil {
			return res, err
		}
		res.Leads++
	}

	s.metrics.AddSynced("campaign", res.Campaigns)
	s.metrics.AddSynced("lead", res.Leads)
	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		s.log.Warn("invalidate agenda cache for account %d: %v", accountID, err)
	}
	return res, nil
}
