package handlers

import (
	"net/http"

	"leadawaker/internal/utils"
)

func (c *CRMHandlers) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	stats, err := c.Store.DashboardStats(r.Context(), accountID)
	if err != nil {
		c.respondStoreError(w, err, "Dashboard stats")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

// GetPipeline groups the scoped leads by conversion status.
func (c *CRMHandlers) GetPipeline(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	stages, err := c.Store.Pipeline(r.Context(), accountID)
	if err != nil {
		c.respondStoreError(w, err, "Pipeline")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stages)
}
