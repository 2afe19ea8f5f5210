package handlers

import (
	"errors"
	"net/http"
	"time"

	"leadawaker/internal/access"
	"leadawaker/internal/cache"
	"leadawaker/internal/config"
	"leadawaker/internal/logger"
	"leadawaker/internal/metrics"
	"leadawaker/internal/middleware"
	"leadawaker/internal/oidc"
	"leadawaker/internal/repo"
	"leadawaker/internal/scheduler"
	"leadawaker/internal/sessionstore"
	"leadawaker/internal/syncer"
	"leadawaker/internal/utils"
)

type CRMHandlers struct {
	Store     *repo.Store
	Log       logger.Logger
	Sessions  *sessionstore.Store
	Policy    *access.Policy
	Cache     cache.AgendaCache
	Sync      *syncer.Service
	Scheduler *scheduler.Scheduler
	OIDC      *oidc.Client
	Metrics   *metrics.Metrics
	Params    config.EnvParams
	Now       func() time.Time
}

var errForeignAccount = errors.New("account is outside your scope")

// caller is the authenticated identity taken from the JWT claims.
type caller struct {
	UserID    int
	Role      access.Role
	AccountID int
}

func (c *CRMHandlers) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CRMHandlers) agendaCache() cache.AgendaCache {
	if c.Cache == nil {
		return cache.Noop{}
	}
	return c.Cache
}

func (c *CRMHandlers) policy() *access.Policy {
	if c.Policy == nil {
		return access.Default()
	}
	return c.Policy
}

// callerFrom writes a 401 and returns false when the request carries no identity.
func (c *CRMHandlers) callerFrom(w http.ResponseWriter, r *http.Request) (caller, bool) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "User not authenticated")
		return caller{}, false
	}
	role, _ := access.ParseRole(middleware.RoleFrom(r.Context()))
	return caller{
		UserID:    userID,
		Role:      role,
		AccountID: middleware.AccountIDFrom(r.Context()),
	}, true
}

// isAgencyAdmin is true for admins whose home account is the agency account.
func (c *CRMHandlers) isAgencyAdmin(cl caller) bool {
	return cl.Role == access.RoleAdmin && cl.AccountID == c.Params.AgencyAccountID
}

// resolveAccount picks the account a request reads or writes. The agency admin
// may address any account (0 = all); everyone else is pinned to their own.
func (c *CRMHandlers) resolveAccount(cl caller, requested int) (int, error) {
	if c.isAgencyAdmin(cl) {
		return requested, nil
	}
	if requested != 0 && requested != cl.AccountID {
		return 0, errForeignAccount
	}
	return cl.AccountID, nil
}

func (c *CRMHandlers) canSee(cl caller, accountID int) bool {
	return c.isAgencyAdmin(cl) || cl.AccountID == accountID
}

// accountParam resolves ?accountId= for the caller, writing 400/403 on failure.
func (c *CRMHandlers) accountParam(w http.ResponseWriter, r *http.Request, cl caller) (int, bool) {
	requested, err := utils.QueryInt(r, "accountId")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	accountID, err := c.resolveAccount(cl, requested)
	if err != nil {
		utils.RespondError(w, http.StatusForbidden, err.Error())
		return 0, false
	}
	return accountID, true
}

// respondStoreError maps repository sentinels to status codes and hides everything else.
func (c *CRMHandlers) respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, repo.ErrConflict):
		utils.RespondError(w, http.StatusConflict, what+" already exists")
	default:
		c.Log.Error("%s: %v", what, err)
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
	}
}

// invalidateAgenda only logs failures; entries also expire with the TTL.
func (c *CRMHandlers) invalidateAgenda(r *http.Request, accountID int) {
	if err := c.agendaCache().Invalidate(r.Context(), accountID); err != nil {
		c.Log.Warn("invalidate agenda cache for account %d: %v", accountID, err)
	}
}
