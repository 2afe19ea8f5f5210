package handlers

import (
	"net/http"

	"leadawaker/internal/models"
	"leadawaker/internal/trend"
	"leadawaker/internal/utils"
)

func (c *CRMHandlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.CampaignPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	accountID, err := c.resolveAccount(cl, payload.AccountID)
	if err != nil {
		utils.RespondError(w, http.StatusForbidden, err.Error())
		return
	}
	if accountID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if _, err := c.Store.GetAccount(r.Context(), accountID); err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	payload.AccountID = accountID

	campaign, err := c.Store.CreateCampaign(r.Context(), payload)
	if err != nil {
		c.respondStoreError(w, err, "Campaign")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, campaign)
}

func (c *CRMHandlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	campaigns, err := c.Store.ListCampaigns(r.Context(), accountID, r.URL.Query().Get("status"))
	if err != nil {
		c.respondStoreError(w, err, "Campaigns")
		return
	}
	utils.RespondJSON(w, http.StatusOK, campaigns)
}

// loadCampaign fetches a campaign the caller may see, writing the error response otherwise.
func (c *CRMHandlers) loadCampaign(w http.ResponseWriter, r *http.Request, cl caller) (models.Campaign, bool) {
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid campaign ID")
		return models.Campaign{}, false
	}
	campaign, err := c.Store.GetCampaign(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "Campaign")
		return models.Campaign{}, false
	}
	if !c.canSee(cl, campaign.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "Campaign not found")
		return models.Campaign{}, false
	}
	return campaign, true
}

func (c *CRMHandlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	if campaign, ok := c.loadCampaign(w, r, cl); ok {
		utils.RespondJSON(w, http.StatusOK, campaign)
	}
}

func (c *CRMHandlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	campaign, ok := c.loadCampaign(w, r, cl)
	if !ok {
		return
	}
	var payload models.CampaignPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := c.Store.UpdateCampaign(r.Context(), campaign.ID, payload)
	if err != nil {
		c.respondStoreError(w, err, "Campaign")
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

// RecordCampaignMetrics writes the day's snapshot. A second one for the same date is 409.
func (c *CRMHandlers) RecordCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	campaign, ok := c.loadCampaign(w, r, cl)
	if !ok {
		return
	}
	var snap models.CampaignMetricsSnapshot
	if err := utils.DecodeJSON(r, &snap); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap.CampaignID = campaign.ID

	saved, err := c.Store.RecordCampaignSnapshot(r.Context(), snap)
	if err != nil {
		c.respondStoreError(w, err, "Metrics snapshot for "+snap.SnapshotDate)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, saved)
}

func (c *CRMHandlers) ListCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	campaign, ok := c.loadCampaign(w, r, cl)
	if !ok {
		return
	}
	q := r.URL.Query()
	snaps, err := c.Store.ListCampaignSnapshots(r.Context(), campaign.ID, q.Get("from"), q.Get("to"))
	if err != nil {
		c.respondStoreError(w, err, "Metrics history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, snaps)
}

// GetCampaignTrend summarises one metric field; ?field defaults to response_rate_percent.
func (c *CRMHandlers) GetCampaignTrend(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	fieldName := r.URL.Query().Get("field")
	if fieldName == "" {
		fieldName = string(trend.FieldResponseRate)
	}
	field, err := trend.ParseField(fieldName)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	campaign, ok := c.loadCampaign(w, r, cl)
	if !ok {
		return
	}
	q := r.URL.Query()
	snaps, err := c.Store.ListCampaignSnapshots(r.Context(), campaign.ID, q.Get("from"), q.Get("to"))
	if err != nil {
		c.respondStoreError(w, err, "Metrics history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, trend.Compute(snaps, field))
}

func (c *CRMHandlers) GetCampaignTotals(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	campaign, ok := c.loadCampaign(w, r, cl)
	if !ok {
		return
	}
	q := r.URL.Query()
	snaps, err := c.Store.ListCampaignSnapshots(r.Context(), campaign.ID, q.Get("from"), q.Get("to"))
	if err != nil {
		c.respondStoreError(w, err, "Metrics history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, trend.Sum(snaps))
}
