package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"leadawaker/internal/config"
	"leadawaker/internal/logger"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t   *testing.T
	api *Api
	h   http.Handler
}

func newTestServer(t *testing.T, mutate func(*config.EnvParams)) *testServer {
	t.Helper()
	p := config.EnvParams{
		JWTToken:        "api-test-secret",
		ApiPort:         "0",
		DataPath:        t.TempDir(),
		LogLevel:        "error",
		AgencyAccountID: 1,
		Database:        config.DatabaseOptions{Driver: "sqlite"},
		Redis:           config.RedisOptions{AgendaTTL: time.Minute},
	}
	if mutate != nil {
		mutate(&p)
	}
	a := NewApi(p)
	a.SetLogger(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Setup(ctx))
	t.Cleanup(a.Stop)
	t.Cleanup(cancel)
	return &testServer{t: t, api: a, h: a.Handler()}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 && rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type authResult struct {
	Token string `json:"token"`
	User  struct {
		ID        int    `json:"id"`
		Role      string `json:"role"`
		AccountID int    `json:"account_id"`
	} `json:"user"`
}

func (s *testServer) register(username string) authResult {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "supersecret",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	return decode[authResult](s.t, env.Data)
}

func (s *testServer) login(username string) authResult {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/login", "", map[string]any{"username": username, "password": "supersecret"})
	require.Equal(s.t, http.StatusOK, code, env.Error)
	return decode[authResult](s.t, env.Data)
}

// addUser creates a user through the admin API and signs them in.
func (s *testServer) addUser(admin authResult, username, role string, accountID int) authResult {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/users", admin.Token, map[string]any{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "supersecret",
		"role":       role,
		"account_id": accountID,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	return s.login(username)
}

type idOnly struct {
	ID int `json:"id"`
}

func TestRegisterBootstrapsAgency(t *testing.T) {
	s := newTestServer(t, nil)

	owner := s.register("owner")
	require.Equal(t, "Admin", owner.User.Role)
	require.Equal(t, 1, owner.User.AccountID)

	viewer := s.register("viewer")
	require.Equal(t, "Viewer", viewer.User.Role)
	require.Equal(t, 1, viewer.User.AccountID)

	code, _ := s.do(http.MethodPost, "/register", "", map[string]any{
		"username": "owner", "email": "other@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, code)

	code, env := s.do(http.MethodPost, "/login", "", map[string]any{"username": "owner", "password": "wrong-one"})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid username or password", env.Error)

	code, env = s.do(http.MethodPost, "/login", "", map[string]any{"username": "owner", "password": "supersecret"})
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, decode[authResult](t, env.Data).Token)
}

func TestAuthAndCapabilities(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("owner")
	viewer := s.register("viewer")

	code, _ := s.do(http.MethodGet, "/api/leads", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/leads", viewer.Token, map[string]any{"phone": "+15550001"})
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, env.Error, "leads.edit")

	code, _ = s.do(http.MethodGet, "/api/accounts", viewer.Token, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/api/accounts", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/admin/health/DB", viewer.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, "/admin/sync", owner.Token, nil)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "Upstream sync is not configured", env.Error)
}

func TestLeadLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("owner")
	viewer := s.register("viewer")

	code, env := s.do(http.MethodPost, "/api/accounts", owner.Token, map[string]any{"name": "Acme Dental"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	account := decode[struct {
		ID            int    `json:"id"`
		WebhookSecret string `json:"webhook_secret"`
	}](t, env.Data)
	require.Len(t, account.WebhookSecret, 48)

	code, env = s.do(http.MethodPost, "/api/campaigns", owner.Token, map[string]any{"account_id": account.ID, "name": "Spring recall"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	campaign := decode[idOnly](t, env.Data)

	code, env = s.do(http.MethodPost, "/api/leads", owner.Token, map[string]any{
		"account_id":  account.ID,
		"campaign_id": campaign.ID,
		"first_name":  "Ana",
		"last_name":   "Lopez",
		"phone":       "+15550001",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	lead := decode[struct {
		ID               int    `json:"id"`
		FullName         string `json:"full_name"`
		ConversionStatus string `json:"conversion_status"`
	}](t, env.Data)
	require.Equal(t, "Ana Lopez", lead.FullName)
	leadPath := fmt.Sprintf("/api/leads/%d", lead.ID)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/leads?accountId=%d&q=lpz", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[[]idOnly](t, env.Data), 1)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/leads?accountId=%d&q=zzz", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, decode[[]idOnly](t, env.Data))

	// The viewer lives in the agency account and cannot see Acme's rows.
	code, env = s.do(http.MethodGet, "/api/leads", viewer.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, decode[[]idOnly](t, env.Data))
	code, _ = s.do(http.MethodGet, leadPath, viewer.Token, nil)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/leads?accountId=%d", account.ID), viewer.Token, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPost, "/api/interactions", owner.Token, map[string]any{
		"lead_id": lead.ID, "direction": "Outbound", "content": "Hi Ana!",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	interaction := decode[struct {
		AccountID  int  `json:"account_id"`
		CampaignID *int `json:"campaign_id"`
		CreatedBy  *int `json:"created_by"`
	}](t, env.Data)
	require.Equal(t, account.ID, interaction.AccountID)
	require.Equal(t, campaign.ID, *interaction.CampaignID)
	require.Equal(t, owner.User.ID, *interaction.CreatedBy)

	code, env = s.do(http.MethodGet, leadPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	detail := decode[struct {
		Lead struct {
			MessagesSent int `json:"messages_sent"`
		} `json:"lead"`
	}](t, env.Data)
	require.Equal(t, 1, detail.Lead.MessagesSent)

	code, _ = s.do(http.MethodGet, "/api/interactions", owner.Token, nil)
	require.Equal(t, http.StatusBadRequest, code)
	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/interactions?leadId=%d", lead.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[[]idOnly](t, env.Data), 1)

	code, env = s.do(http.MethodPost, "/api/tags", owner.Token, map[string]any{"account_id": account.ID, "name": "vip", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	tag := decode[idOnly](t, env.Data)
	tagPath := fmt.Sprintf("%s/tags/%d", leadPath, tag.ID)
	code, _ = s.do(http.MethodPost, tagPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, tagPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, tagPath, owner.Token, nil)
	require.Equal(t, http.StatusNotFound, code)

	scorePath := leadPath + "/score-history"
	code, _ = s.do(http.MethodPost, scorePath, owner.Token, map[string]any{"score": 40, "snapshot_date": "2026-01-01"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, scorePath, owner.Token, map[string]any{"score": 90, "snapshot_date": "2026-01-01"})
	require.Equal(t, http.StatusConflict, code)
	code, _ = s.do(http.MethodPost, scorePath, owner.Token, map[string]any{"score": 80, "snapshot_date": "2026-01-02"})
	require.Equal(t, http.StatusCreated, code)
	code, env = s.do(http.MethodGet, leadPath+"/score-trend", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	tr := decode[struct {
		Trend *int `json:"trend"`
	}](t, env.Data)
	require.NotNil(t, tr.Trend)
	require.Equal(t, 100, *tr.Trend)

	code, _ = s.do(http.MethodPost, leadPath+"/close", owner.Token, map[string]any{"outcome": "Won"})
	require.Equal(t, http.StatusBadRequest, code)
	code, env = s.do(http.MethodPost, leadPath+"/close", owner.Token, map[string]any{"outcome": "DND"})
	require.Equal(t, http.StatusOK, code, env.Error)
	closed := decode[struct {
		ConversionStatus string `json:"conversion_status"`
		AutomationStatus string `json:"automation_status"`
	}](t, env.Data)
	require.Equal(t, "DND", closed.ConversionStatus)
	require.Equal(t, "dnd", closed.AutomationStatus)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/dash/stats?accountId=%d", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[struct {
		TotalLeads int `json:"total_leads"`
		DNDLeads   int `json:"dnd_leads"`
	}](t, env.Data)
	require.Equal(t, 1, stats.TotalLeads)
	require.Equal(t, 1, stats.DNDLeads)
}

func TestWebhookIntakeFeedsAgenda(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newTestServer(t, func(p *config.EnvParams) { p.Redis.Addr = mr.Addr() })
	owner := s.register("owner")

	code, env := s.do(http.MethodPost, "/api/accounts", owner.Token, map[string]any{"name": "Acme Dental"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	account := decode[struct {
		ID            int    `json:"id"`
		WebhookSecret string `json:"webhook_secret"`
	}](t, env.Data)
	agendaPath := fmt.Sprintf("/api/agenda?accountId=%d", account.ID)

	code, env = s.do(http.MethodGet, agendaPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, decode[struct {
		UpcomingCalls []json.RawMessage `json:"upcoming_calls"`
	}](t, env.Data).UpcomingCalls)
	require.True(t, mr.Exists(fmt.Sprintf("agenda:%d", account.ID)))

	intakePath := fmt.Sprintf("/webhooks/accounts/%d/leads", account.ID)
	body := map[string]any{"list": []map[string]any{
		{"id": "ext-1", "name": "Bob", "phone": "+15550002", "conversion_status": "Booked",
			"booked_call_date": time.Now().Add(26 * time.Hour).UTC().Format(time.RFC3339),
			"lead_score":       80, "automation_status": "active"},
		{"id": "ext-2", "name": "Cleo", "phone": "+15550003", "manual_takeover": "true"},
		{"name": "no id"},
	}}

	code, _ = s.do(http.MethodPost, intakePath, "", body)
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodPost, intakePath, "", body, "X-Webhook-Secret", "nope")
	require.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, intakePath, "", body, "X-Webhook-Secret", account.WebhookSecret)
	require.Equal(t, http.StatusAccepted, code, env.Error)
	require.JSONEq(t, `{"accepted":2,"skipped":1}`, string(env.Data))
	require.False(t, mr.Exists(fmt.Sprintf("agenda:%d", account.ID)))

	code, env = s.do(http.MethodGet, agendaPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	ag := decode[struct {
		UpcomingCalls []struct {
			LeadName string `json:"lead_name"`
		} `json:"upcoming_calls"`
		TakeoverLeads []struct {
			LeadName string `json:"lead_name"`
			Urgency  string `json:"urgency"`
		} `json:"takeover_leads"`
	}](t, env.Data)
	require.Len(t, ag.UpcomingCalls, 1)
	require.Equal(t, "Bob", ag.UpcomingCalls[0].LeadName)
	require.Len(t, ag.TakeoverLeads, 1)
	require.Equal(t, "Cleo", ag.TakeoverLeads[0].LeadName)
	require.Equal(t, "now", ag.TakeoverLeads[0].Urgency)

	// Replaying the same records updates in place.
	code, _ = s.do(http.MethodPost, intakePath, "", body, "X-Webhook-Secret", account.WebhookSecret)
	require.Equal(t, http.StatusAccepted, code)
	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/leads?accountId=%d", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[[]idOnly](t, env.Data), 2)

	// A later record carrying only an email must not reset what the engine owns.
	partial := []map[string]any{{"id": "ext-1", "email": "bob@example.com"}}
	code, env = s.do(http.MethodPost, intakePath, "", partial, "X-Webhook-Secret", account.WebhookSecret)
	require.Equal(t, http.StatusAccepted, code, env.Error)
	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/leads?accountId=%d&q=bob", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	bob := decode[[]struct {
		FullName         string  `json:"full_name"`
		Email            string  `json:"email"`
		ConversionStatus string  `json:"conversion_status"`
		AutomationStatus string  `json:"automation_status"`
		LeadScore        float64 `json:"lead_score"`
		BookedCallDate   string  `json:"booked_call_date"`
	}](t, env.Data)
	require.Len(t, bob, 1)
	require.Equal(t, "Bob", bob[0].FullName)
	require.Equal(t, "bob@example.com", bob[0].Email)
	require.Equal(t, "Booked", bob[0].ConversionStatus)
	require.Equal(t, "active", bob[0].AutomationStatus)
	require.Equal(t, 80.0, bob[0].LeadScore)
	require.NotEmpty(t, bob[0].BookedCallDate)

	code, env = s.do(http.MethodGet, agendaPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[struct {
		UpcomingCalls []json.RawMessage `json:"upcoming_calls"`
	}](t, env.Data).UpcomingCalls, 1)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/accounts/%d/deactivate", account.ID), owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, intakePath, "", body, "X-Webhook-Secret", account.WebhookSecret)
	require.Equal(t, http.StatusConflict, code)
}

func TestNavigationAndContext(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("owner")
	viewer := s.register("viewer")

	type nav struct {
		Agency           bool              `json:"agency"`
		CanSwitchAccount bool              `json:"can_switch_account"`
		Items            []json.RawMessage `json:"items"`
	}

	code, env := s.do(http.MethodGet, "/api/navigation", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	n := decode[nav](t, env.Data)
	require.True(t, n.Agency)
	require.True(t, n.CanSwitchAccount)
	require.Len(t, n.Items, 11)

	code, env = s.do(http.MethodGet, "/api/navigation", viewer.Token, nil)
	require.Equal(t, http.StatusOK, code)
	n = decode[nav](t, env.Data)
	require.False(t, n.CanSwitchAccount)
	require.Len(t, n.Items, 5)

	code, env = s.do(http.MethodPost, "/api/accounts", owner.Token, map[string]any{"name": "Acme Dental"})
	require.Equal(t, http.StatusCreated, code)
	acme := decode[idOnly](t, env.Data)

	code, _ = s.do(http.MethodPut, "/api/context", viewer.Token, map[string]any{"account_id": acme.ID})
	require.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPut, "/api/context", viewer.Token, map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = s.do(http.MethodGet, "/api/context", viewer.Token, nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"role":"Viewer","account_id":1,"sidebar_collapsed":false,"theme":"dark"}`, string(env.Data))

	code, env = s.do(http.MethodPut, "/api/context", owner.Token, map[string]any{"account_id": acme.ID, "sidebar_collapsed": true})
	require.Equal(t, http.StatusOK, code, env.Error)
	code, env = s.do(http.MethodGet, "/api/navigation", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	n = decode[nav](t, env.Data)
	require.False(t, n.Agency)
	require.Len(t, n.Items, 6)

	code, _ = s.do(http.MethodPut, "/api/context", owner.Token, map[string]any{"theme": "neon"})
	require.Equal(t, http.StatusBadRequest, code)

	// An admin homed in a client account has nothing to switch to.
	clientAdmin := s.addUser(owner, "acmeadmin", "Admin", acme.ID)
	code, env = s.do(http.MethodGet, "/api/navigation", clientAdmin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	n = decode[nav](t, env.Data)
	require.False(t, n.Agency)
	require.False(t, n.CanSwitchAccount)
	require.Len(t, n.Items, 6)
	code, _ = s.do(http.MethodPut, "/api/context", clientAdmin.Token, map[string]any{"account_id": 1})
	require.Equal(t, http.StatusForbidden, code)
}

func TestRoleChangeAppliesToIssuedTokens(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("owner")
	second := s.addUser(owner, "second", "Admin", 1)

	code, env := s.do(http.MethodPost, "/api/accounts", second.Token, map[string]any{"name": "Before"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	rolePath := fmt.Sprintf("/api/users/%d/role", second.User.ID)
	code, env = s.do(http.MethodPut, rolePath, owner.Token, map[string]any{"role": "Viewer"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodPost, "/api/accounts", second.Token, map[string]any{"name": "After"})
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, env.Error, "accounts.manage")

	code, env = s.do(http.MethodGet, "/api/navigation", second.Token, nil)
	require.Equal(t, http.StatusOK, code)
	n := decode[struct {
		Role  string            `json:"role"`
		Items []json.RawMessage `json:"items"`
	}](t, env.Data)
	require.Equal(t, "Viewer", n.Role)
	require.Len(t, n.Items, 5)

	code, env = s.do(http.MethodPut, rolePath, owner.Token, map[string]any{"role": "Viewer", "status": "inactive"})
	require.Equal(t, http.StatusOK, code, env.Error)
	code, _ = s.do(http.MethodGet, "/api/navigation", second.Token, nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminSyncPullsUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/campaigns":
			_, _ = w.Write([]byte(`{"list":[]}`))
		case "/api/leads":
			_, _ = w.Write([]byte(`{"data":[{"id":"u-1","name":"Dana","lead_score":"55"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	s := newTestServer(t, func(p *config.EnvParams) {
		p.Upstream = config.UpstreamOptions{BaseURL: upstream.URL, SyncInterval: time.Minute}
	})
	owner := s.register("owner")

	code, _ := s.do(http.MethodGet, "/admin/sync", owner.Token, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, env := s.do(http.MethodPost, "/admin/sync", owner.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(http.MethodGet, "/admin/sync", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	status := decode[struct {
		Report struct {
			Accounts []struct {
				AccountID int `json:"account_id"`
				Leads     int `json:"leads"`
			} `json:"accounts"`
		} `json:"report"`
		Scheduler struct {
			Running  bool   `json:"running"`
			Interval string `json:"interval"`
		} `json:"scheduler"`
	}](t, env.Data)
	require.Len(t, status.Report.Accounts, 1)
	require.Equal(t, 1, status.Report.Accounts[0].Leads)
	require.False(t, status.Scheduler.Running)
	require.Equal(t, "1m0s", status.Scheduler.Interval)

	code, env = s.do(http.MethodGet, "/api/leads?accountId=1", owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	leads := decode[[]struct {
		FullName  string  `json:"full_name"`
		LeadScore float64 `json:"lead_score"`
	}](t, env.Data)
	require.Len(t, leads, 1)
	require.Equal(t, "Dana", leads[0].FullName)
	require.Equal(t, 55.0, leads[0].LeadScore)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("owner")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `leadawaker_api_requests_total{result="2xx",route="/register"} 1`)
}
