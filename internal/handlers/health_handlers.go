package handlers

import (
	"net/http"

	"leadawaker/internal/utils"
)

func (c *CRMHandlers) Hello(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, "OK")
}

func (c *CRMHandlers) DBPing(w http.ResponseWriter, r *http.Request) {
	if err := c.Store.Ping(r.Context()); err != nil {
		c.Log.Error("Database ping failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Database unreachable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, "OK")
}

// RunSync triggers an upstream pull for every active account, or just
// ?accountId= when given.
func (c *CRMHandlers) RunSync(w http.ResponseWriter, r *http.Request) {
	if c.Sync == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Upstream sync is not configured")
		return
	}
	accountID, err := utils.QueryInt(r, "accountId")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if accountID > 0 {
		res, err := c.Sync.SyncAccount(r.Context(), accountID)
		if err != nil {
			c.Log.Error("Sync of account %d failed: %v", accountID, err)
			utils.RespondMessage(w, http.StatusBadGateway, "Sync failed", res)
			return
		}
		utils.RespondJSON(w, http.StatusOK, res)
		return
	}
	report, err := c.Sync.RunAll(r.Context())
	if err != nil {
		c.Log.Error("Sync run failed: %v", err)
		utils.RespondMessage(w, http.StatusBadGateway, "Sync finished with errors", report)
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

// SyncStatus returns the report of the last completed run together with the
// scheduler's counters.
func (c *CRMHandlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if c.Sync == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Upstream sync is not configured")
		return
	}
	report := c.Sync.LastReport()
	if report == nil {
		utils.RespondError(w, http.StatusNotFound, "No sync has run yet")
		return
	}
	status := map[string]interface{}{"report": report}
	if c.Scheduler != nil {
		status["scheduler"] = c.Scheduler.Status()
	}
	utils.RespondJSON(w, http.StatusOK, status)
}
