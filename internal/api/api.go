package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"leadawaker/internal/access"
	"leadawaker/internal/cache"
	"leadawaker/internal/client"
	"leadawaker/internal/config"
	"leadawaker/internal/database"
	"leadawaker/internal/handlers"
	"leadawaker/internal/logger"
	"leadawaker/internal/metrics"
	"leadawaker/internal/middleware"
	"leadawaker/internal/models"
	"leadawaker/internal/oidc"
	"leadawaker/internal/repo"
	"leadawaker/internal/scheduler"
	"leadawaker/internal/syncer"
	"leadawaker/internal/utils"
)

type Api struct {
	router      *mux.Router
	authRouter  *mux.Router
	dashRouter  *mux.Router
	adminRouter *mux.Router
	Params      config.EnvParams
	handlers.CRMHandlers
	dbManager *database.DBManager
	guard     *access.Guard
	redis     *redis.Client
	log       logger.Logger
}

func NewApi(p config.EnvParams) *Api {
	return &Api{
		Params: p,
	}
}

// Handler is the fully wired HTTP handler. Setup must have been called.
func (a *Api) Handler() http.Handler {
	return cors.AllowAll().Handler(a.router)
}

// authenticate takes role and account from the stored user, not the token claims.
func (a *Api) authenticate() mux.MiddlewareFunc {
	return mux.MiddlewareFunc(middleware.Authenticate(a.CRMHandlers.Store))
}

func (a *Api) SetupAuthRouter() {
	a.authRouter = a.router.PathPrefix("/api").Subrouter()
	a.authRouter.Use(a.authenticate())
}
func (a *Api) SetupDashRouter() {
	a.dashRouter = a.router.PathPrefix("/dash").Subrouter()
	a.dashRouter.Use(a.authenticate())
}
func (a *Api) SetupAdminRouter() {
	a.adminRouter = a.router.PathPrefix("/admin").Subrouter()
	a.adminRouter.Use(a.authenticate())
}

// guarded registers h behind a capability check.
func (a *Api) guarded(r *mux.Router, path string, c access.Capability, h http.HandlerFunc) *mux.Route {
	return r.Handle(path, middleware.RequireCapability(a.guard, c)(h))
}

func (a *Api) SetupAllRoutes() {
	a.router.Use(a.Metrics.Middleware, middleware.RequestLogger(a.log))

	a.SetupAuthRouter()
	a.SetupDashRouter()
	a.SetupAdminRouter()

	a.SetupAuthenticationRoutes()
	a.SetupAccountRoutes()
	a.SetupCampaignRoutes()
	a.SetupLeadRoutes()
	a.SetupInteractionRoutes()
	a.SetupTagRoutes()
	a.SetupUserRoutes()
	a.SetupNavigationRoutes()
	a.SetupDashboardRoutes()
	a.SetupWebhookRoutes()
	a.SetupAdminRoutes()
}
func (a *Api) SetupAuthenticationRoutes() {
	a.router.HandleFunc("/register", a.CRMHandlers.RegisterUser).Methods("POST")
	a.router.HandleFunc("/login", a.CRMHandlers.LoginUser).Methods("POST")
	a.router.HandleFunc("/login/oidc", a.CRMHandlers.OIDCLoginHandler).Methods("GET")
	a.router.HandleFunc("/login/oidc/callback", a.CRMHandlers.OIDCCallbackHandler).Methods("GET")
	a.authRouter.HandleFunc("/logout/oidc", a.CRMHandlers.OIDCLogoutHandler).Methods("GET")
}
func (a *Api) SetupAccountRoutes() {
	a.guarded(a.authRouter, "/accounts", access.AccountsManage, a.CRMHandlers.CreateAccount).Methods("POST")
	a.guarded(a.authRouter, "/accounts", access.AccountsView, a.CRMHandlers.ListAccounts).Methods("GET")
	a.guarded(a.authRouter, "/accounts/{id}", access.AccountsView, a.CRMHandlers.GetAccount).Methods("GET")
	a.guarded(a.authRouter, "/accounts/{id}", access.AccountsManage, a.CRMHandlers.UpdateAccount).Methods("PUT")
	a.guarded(a.authRouter, "/accounts/{id}/deactivate", access.AccountsManage, a.CRMHandlers.DeactivateAccount).Methods("POST")
}
func (a *Api) SetupCampaignRoutes() {
	a.guarded(a.authRouter, "/campaigns", access.CampaignsEdit, a.CRMHandlers.CreateCampaign).Methods("POST")
	a.guarded(a.authRouter, "/campaigns", access.CampaignsView, a.CRMHandlers.ListCampaigns).Methods("GET")
	a.guarded(a.authRouter, "/campaigns/{id}", access.CampaignsView, a.CRMHandlers.GetCampaign).Methods("GET")
	a.guarded(a.authRouter, "/campaigns/{id}", access.CampaignsEdit, a.CRMHandlers.UpdateCampaign).Methods("PUT")
	a.guarded(a.authRouter, "/campaigns/{id}/metrics", access.MetricsRecord, a.CRMHandlers.RecordCampaignMetrics).Methods("POST")
	a.guarded(a.authRouter, "/campaigns/{id}/metrics", access.CampaignsView, a.CRMHandlers.ListCampaignMetrics).Methods("GET")
	a.guarded(a.authRouter, "/campaigns/{id}/trend", access.CampaignsView, a.CRMHandlers.GetCampaignTrend).Methods("GET")
	a.guarded(a.authRouter, "/campaigns/{id}/totals", access.CampaignsView, a.CRMHandlers.GetCampaignTotals).Methods("GET")
}
func (a *Api) SetupLeadRoutes() {
	a.guarded(a.authRouter, "/leads", access.LeadsEdit, a.CRMHandlers.CreateLead).Methods("POST")
	a.guarded(a.authRouter, "/leads", access.LeadsView, a.CRMHandlers.ListLeads).Methods("GET")
	a.guarded(a.authRouter, "/leads/{id}", access.LeadsView, a.CRMHandlers.GetLead).Methods("GET")
	a.guarded(a.authRouter, "/leads/{id}", access.LeadsEdit, a.CRMHandlers.UpdateLead).Methods("PUT")
	a.guarded(a.authRouter, "/leads/{id}/automation-status", access.LeadsEdit, a.CRMHandlers.SetAutomationStatus).Methods("PUT")
	a.guarded(a.authRouter, "/leads/{id}/close", access.LeadsEdit, a.CRMHandlers.CloseLead).Methods("POST")
	a.guarded(a.authRouter, "/leads/{id}/score-history", access.MetricsRecord, a.CRMHandlers.RecordLeadScore).Methods("POST")
	a.guarded(a.authRouter, "/leads/{id}/score-history", access.LeadsView, a.CRMHandlers.ListLeadScores).Methods("GET")
	a.guarded(a.authRouter, "/leads/{id}/score-trend", access.LeadsView, a.CRMHandlers.GetLeadScoreTrend).Methods("GET")
	a.guarded(a.authRouter, "/leads/{id}/tags/{tagId}", access.LeadsEdit, a.CRMHandlers.AttachTag).Methods("POST")
	a.guarded(a.authRouter, "/leads/{id}/tags/{tagId}", access.LeadsEdit, a.CRMHandlers.DetachTag).Methods("DELETE")
	a.guarded(a.authRouter, "/agenda", access.CalendarView, a.CRMHandlers.GetAgenda).Methods("GET")
}
func (a *Api) SetupInteractionRoutes() {
	a.guarded(a.authRouter, "/interactions", access.InteractionsCreate, a.CRMHandlers.CreateInteraction).Methods("POST")
	a.guarded(a.authRouter, "/interactions", access.ConversationsView, a.CRMHandlers.ListInteractions).Methods("GET")
	a.guarded(a.authRouter, "/interactions/{id}", access.ConversationsView, a.CRMHandlers.GetInteraction).Methods("GET")
}
func (a *Api) SetupTagRoutes() {
	a.guarded(a.authRouter, "/tags", access.TagsManage, a.CRMHandlers.CreateTag).Methods("POST")
	a.guarded(a.authRouter, "/tags", access.TagsView, a.CRMHandlers.ListTags).Methods("GET")
}
func (a *Api) SetupUserRoutes() {
	a.guarded(a.authRouter, "/users", access.UsersManage, a.CRMHandlers.ListUsers).Methods("GET")
	a.guarded(a.authRouter, "/users", access.UsersManage, a.CRMHandlers.CreateUser).Methods("POST")
	a.guarded(a.authRouter, "/users/{id}/role", access.UsersManage, a.CRMHandlers.UpdateUserRole).Methods("PUT")
	a.authRouter.HandleFunc("/profile", a.CRMHandlers.GetProfile).Methods("GET")
	a.authRouter.HandleFunc("/profile", a.CRMHandlers.UpdateProfile).Methods("PUT")
}
func (a *Api) SetupNavigationRoutes() {
	a.authRouter.HandleFunc("/navigation", a.CRMHandlers.GetNavigation).Methods("GET")
	a.authRouter.HandleFunc("/capabilities", a.CRMHandlers.GetCapabilities).Methods("GET")
	a.authRouter.HandleFunc("/context", a.CRMHandlers.GetContext).Methods("GET")
	a.authRouter.HandleFunc("/context", a.CRMHandlers.UpdateContext).Methods("PUT")
}
func (a *Api) SetupDashboardRoutes() {
	a.guarded(a.dashRouter, "/stats", access.DashboardView, a.CRMHandlers.GetDashboardStats).Methods("GET")
	a.guarded(a.dashRouter, "/pipeline", access.DashboardView, a.CRMHandlers.GetPipeline).Methods("GET")
}
func (a *Api) SetupWebhookRoutes() {
	a.router.HandleFunc("/webhooks/accounts/{id}/leads", a.CRMHandlers.IntakeLeads).Methods("POST")
}
func (a *Api) SetupAdminRoutes() {
	a.router.Handle("/metrics", a.Metrics.Handler()).Methods("GET")
	a.adminRouter.HandleFunc("/health/API", a.CRMHandlers.Hello).Methods("GET")
	a.adminRouter.HandleFunc("/health/DB", a.CRMHandlers.DBPing).Methods("GET")
	a.guarded(a.adminRouter, "/sync", access.SettingsEdit, a.CRMHandlers.RunSync).Methods("POST")
	a.guarded(a.adminRouter, "/sync", access.SettingsEdit, a.CRMHandlers.SyncStatus).Methods("GET")
}

func (a *Api) SetupLogger() {
	if a.log == nil {
		a.log = logger.NewConsoleLogger(os.Stderr, "[LEADAWAKER]", logger.ParseLevel(a.Params.LogLevel))
	}
	a.CRMHandlers.Log = a.log
	a.log.Info("Logger initialized at level %s", a.Params.LogLevel)
}

// SetLogger replaces the console logger; call before Setup.
func (a *Api) SetLogger(l logger.Logger) {
	a.log = l
}

func (a *Api) SetupDatabases(ctx context.Context) error {
	a.log.Info("Setting up API databases")
	a.dbManager = database.NewDBManager(a.Params.Database.Driver, a.Params.DSN(), a.log)
	if err := a.dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := a.dbManager.ApplyMigrations(ctx); err != nil {
		return fmt.Errorf("cannot apply migrations: %w", err)
	}

	a.log.Info("Setting up session storage")
	sessions, err := a.dbManager.InitSessionStore(a.Params.SessionPath())
	if err != nil {
		return fmt.Errorf("cannot initialize session storage: %w", err)
	}

	a.CRMHandlers.Store = repo.New(a.dbManager.DB)
	a.CRMHandlers.Sessions = sessions
	a.log.Info("DB setup complete")
	return nil
}

// SetupCache connects Redis when configured. An unreachable Redis degrades to
// no caching instead of failing startup.
func (a *Api) SetupCache(ctx context.Context) {
	a.CRMHandlers.Cache = cache.Noop{}
	if !a.Params.Redis.Enabled() {
		a.log.Info("REDIS_ADDR not set, agenda caching disabled")
		return
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.Params.Redis.Addr,
		Password: a.Params.Redis.Password,
		DB:       a.Params.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.log.Warn("Cannot reach Redis at %s, agenda caching disabled: %v", a.Params.Redis.Addr, err)
		rdb.Close()
		return
	}
	a.redis = rdb
	a.CRMHandlers.Cache = cache.NewRedisCache(rdb, a.Params.Redis.AgendaTTL)
	a.log.Info("Agenda cache connected to %s", a.Params.Redis.Addr)
}

// SetupSync wires the upstream client and the periodic sync when a base URL is set.
func (a *Api) SetupSync() error {
	if !a.Params.Upstream.Enabled() {
		a.log.Info("UPSTREAM_BASE_URL not set, upstream sync disabled")
		return nil
	}
	upstream := client.NewUpstreamClient(a.Params.Upstream.BaseURL, a.Params.Upstream.APIToken)
	a.CRMHandlers.Sync = syncer.New(a.CRMHandlers.Store, upstream, a.CRMHandlers.Cache, a.Metrics, a.log)

	s, err := scheduler.New(a.Params.Upstream.SyncInterval, a.CRMHandlers.Sync, a.log)
	if err != nil {
		return fmt.Errorf("cannot create sync scheduler: %w", err)
	}
	a.CRMHandlers.Scheduler = s
	return nil
}

func (a *Api) SetupOIDC(ctx context.Context) {
	if a.Params.OIDC.Missing() {
		a.log.Info("OIDC variables missing, OIDC login disabled")
		return
	}
	a.log.Info("Setting Up OIDC")
	oc, err := oidc.InitOIDC(ctx, a.Params.OIDC)
	if err != nil {
		a.log.Warn("Cannot start OIDC functionality: %v", err)
		return
	}
	a.CRMHandlers.OIDC = oc
}

// Setup builds every component and the router without starting the listener.
func (a *Api) Setup(ctx context.Context) error {
	a.SetupLogger()
	a.log.Info("Setting JWT token")
	utils.SetJWTSecret(a.Params.JWTToken)

	policy := access.Default()
	guard, err := access.NewGuard(policy)
	if err != nil {
		return err
	}
	a.guard = guard
	a.CRMHandlers.Policy = policy
	a.CRMHandlers.Params = a.Params
	a.CRMHandlers.Metrics = metrics.New()

	a.SetupOIDC(ctx)
	if err := a.SetupDatabases(ctx); err != nil {
		return err
	}
	a.SetupCache(ctx)
	if err := a.SetupSync(); err != nil {
		return err
	}

	a.router = mux.NewRouter()
	a.log.Info("Setting up routes")
	a.SetupAllRoutes()
	return nil
}

func (a *Api) Start() {
	fmt.Print(models.StartupText)

	if err := a.Setup(context.Background()); err != nil {
		if a.log == nil {
			a.SetupLogger()
		}
		a.log.Fatal("Cannot start API: %v", err)
	}
	if a.CRMHandlers.Scheduler != nil {
		a.CRMHandlers.Scheduler.Start()
		a.log.Info("Upstream sync every %s", a.Params.Upstream.SyncInterval)
	}

	killSignal := make(chan os.Signal, 1)
	signal.Notify(killSignal, os.Interrupt, syscall.SIGTERM)
	server := &http.Server{
		Addr:              ":" + a.Params.ApiPort,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Starting API at endpoint: %s (tls=%t)", a.Params.ApiPort, a.Params.TLSEnabled())
		var err error
		if a.Params.TLSEnabled() {
			err = server.ListenAndServeTLS(a.Params.CertFilePath, a.Params.KeyFilePath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatal("Cannot start API: %v", err)
		}
	}()

	<-killSignal
	a.log.Info("Received shutdown signal. Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.log.Error("Server shutdown failed: %v", err)
	}
	a.Stop()
}

func (a *Api) Stop() {
	a.log.Info("Graceful shutdown of services")
	if a.CRMHandlers.Scheduler != nil {
		a.CRMHandlers.Scheduler.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Cannot close Redis client: %v", err)
		}
	}
	if a.CRMHandlers.Sessions != nil {
		if err := a.CRMHandlers.Sessions.Close(); err != nil {
			a.log.Warn("Cannot close session storage: %v", err)
		}
	}
	if a.dbManager != nil {
		if err := a.dbManager.Close(); err != nil {
			a.log.Warn("Couldn't close database connection: %v", err)
		}
	}
	a.log.Info("API shutdown gracefully")
}
