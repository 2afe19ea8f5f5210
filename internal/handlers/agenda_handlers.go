package handlers

import (
	"net/http"

	"leadawaker/internal/agenda"
	"leadawaker/internal/utils"
)

// GetAgenda returns upcoming calls and takeover leads for the scoped account,
// served from the agenda cache when possible.
func (c *CRMHandlers) GetAgenda(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}

	ctx := r.Context()
	cached, err := c.agendaCache().GetAgenda(ctx, accountID)
	if err != nil {
		c.Log.Warn("agenda cache lookup for account %d: %v", accountID, err)
	}
	c.Metrics.ObserveCacheLookup(cached != nil)
	if cached != nil {
		utils.RespondJSON(w, http.StatusOK, cached)
		return
	}

	leads, err := c.Store.ListAgendaCandidates(ctx, accountID)
	if err != nil {
		c.respondStoreError(w, err, "Agenda")
		return
	}
	a := agenda.Build(leads, c.now())
	if err := c.agendaCache().StoreAgenda(ctx, accountID, a); err != nil {
		c.Log.Warn("agenda cache store for account %d: %v", accountID, err)
	}
	utils.RespondJSON(w, http.StatusOK, a)
}
