package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"leadawaker/internal/agenda"
	"leadawaker/internal/cache"
	"leadawaker/internal/database"
	"leadawaker/internal/ingest"
	"leadawaker/internal/logger"
	"leadawaker/internal/metrics"
	"leadawaker/internal/models"
	"leadawaker/internal/repo"
)

type fakeSource struct {
	leads     map[int]string
	campaigns map[int]string
	fail      map[int]bool
}

func (f fakeSource) FetchLeads(_ context.Context, accountID int) ([]ingest.Record, error) {
	if f.fail[accountID] {
		return nil, errors.New("upstream down")
	}
	return ingest.DecodeList([]byte(f.leads[accountID]))
}

func (f fakeSource) FetchCampaigns(_ context.Context, accountID int) ([]ingest.Record, error) {
	return ingest.DecodeList([]byte(f.campaigns[accountID]))
}

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	dm := database.NewDBManager(database.DriverSQLite, filepath.Join(t.TempDir(), "sync.db"), logger.Discard())
	ctx := context.Background()
	require.NoError(t, dm.Connect(ctx))
	require.NoError(t, dm.ApplyMigrations(ctx))
	t.Cleanup(func() { _ = dm.Close() })
	return repo.New(dm.DB)
}

func TestRunAll_UpsertsAndRepointsCampaigns(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	ctx := context.Background()
	acct, err := store.CreateAccount(ctx, models.AccountPayload{Name: "Acme"}, "s")
	require.NoError(t, err)

	src := fakeSource{
		campaigns: map[int]string{acct.ID: `{"list":[{"id":300,"name":"Spring","status":"active","total_messages_sent":"12"}]}`},
		leads: map[int]string{acct.ID: `[
			{"id":"L1","full_name":"Jane","Campaigns_id":300,"conversion_status":"Booked","booked_call_date":"2026-05-01T10:00:00Z"},
			{"id":"L2","first_name":"Bob","campaign_id":999}
		]`},
	}
	svc := New(store, src, nil, metrics.New(), logger.Discard())

	report, err := svc.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, report.Accounts, 1)
	require.Equal(t, 1, report.Accounts[0].Campaigns)
	require.Equal(t, 2, report.Accounts[0].Leads)
	require.Equal(t, 1, report.Accounts[0].Snapshots)

	campaigns, err := store.ListCampaigns(ctx, acct.ID, "")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.Equal(t, models.CampaignStatusActive, campaigns[0].Status)
	require.Equal(t, 12, campaigns[0].TotalMessagesSent)

	leads, err := store.ListLeads(ctx, repo.LeadFilter{AccountID: acct.ID})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	require.NotNil(t, leads[0].CampaignID)
	require.Equal(t, campaigns[0].ID, *leads[0].CampaignID)
	require.Nil(t, leads[1].CampaignID, "unknown upstream campaign is dropped")

	// Second pass updates in place and does not duplicate the daily snapshot.
	report, err = svc.RunAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Accounts[0].Snapshots)
	leads, err = store.ListLeads(ctx, repo.LeadFilter{AccountID: acct.ID})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	require.NotNil(t, svc.LastReport())
}

func TestRunAll_OneFailingAccountDoesNotStopOthers(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	ctx := context.Background()
	bad, err := store.CreateAccount(ctx, models.AccountPayload{Name: "Bad"}, "s")
	require.NoError(t, err)
	good, err := store.CreateAccount(ctx, models.AccountPayload{Name: "Good"}, "s")
	require.NoError(t, err)

	src := fakeSource{
		leads: map[int]string{good.ID: `[{"id":"g1","full_name":"Gina"}]`},
		fail:  map[int]bool{bad.ID: true},
	}
	svc := New(store, src, nil, nil, logger.Discard())

	report, err := svc.RunAll(ctx)
	require.Error(t, err)
	require.Len(t, report.Accounts, 2)
	require.NotEmpty(t, report.Accounts[0].Error)
	require.Empty(t, report.Accounts[1].Error)

	leads, err := store.ListLeads(ctx, repo.LeadFilter{AccountID: good.ID})
	require.NoError(t, err)
	require.Len(t, leads, 1)
}

func TestRunAll_SkipsInactiveAccounts(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	ctx := context.Background()
	acct, err := store.CreateAccount(ctx, models.AccountPayload{Name: "Gone"}, "s")
	require.NoError(t, err)
	require.NoError(t, store.SetAccountStatus(ctx, acct.ID, models.AccountStatusInactive))

	svc := New(store, fakeSource{fail: map[int]bool{acct.ID: true}}, nil, nil, logger.Discard())
	report, err := svc.RunAll(ctx)
	require.NoError(t, err)
	require.Empty(t, report.Accounts)
}

func TestSyncAccount_InvalidatesAgendaCache(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	ctx := context.Background()
	acct, err := store.CreateAccount(ctx, models.AccountPayload{Name: "Cached"}, "s")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	require.NoError(t, rc.StoreAgenda(ctx, acct.ID, agenda.Agenda{}))

	svc := New(store, fakeSource{}, rc, nil, logger.Discard())
	_, err = svc.SyncAccount(ctx, acct.ID)
	require.NoError(t, err)

	got, err := rc.GetAgenda(ctx, acct.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}
