package handlers

import (
	"net/http"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"leadawaker/internal/models"
	"leadawaker/internal/repo"
	"leadawaker/internal/trend"
	"leadawaker/internal/utils"
)

func leadFromPayload(p models.LeadPayload) models.Lead {
	lead := models.Lead{
		AccountID:        p.AccountID,
		CampaignID:       p.CampaignID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		FullName:         strings.TrimSpace(p.FullName),
		Phone:            p.Phone,
		Email:            p.Email,
		ConversionStatus: p.ConversionStatus,
		BookedCallDate:   p.BookedCallDate,
		ManualTakeover:   p.ManualTakeover,
		Sentiment:        p.Sentiment,
		Source:           p.Source,
	}
	if lead.FullName == "" {
		var parts []string
		for _, s := range []*string{p.FirstName, p.LastName} {
			if s != nil && strings.TrimSpace(*s) != "" {
				parts = append(parts, strings.TrimSpace(*s))
			}
		}
		lead.FullName = strings.Join(parts, " ")
	}
	if lead.FullName == "" && p.Phone != nil {
		lead.FullName = *p.Phone
	}
	if lead.FullName == "" && p.Email != nil {
		lead.FullName = *p.Email
	}
	return lead
}

// checkCampaign ensures a referenced campaign exists in the lead's account.
func (c *CRMHandlers) checkCampaign(w http.ResponseWriter, r *http.Request, campaignID *int, accountID int) bool {
	if campaignID == nil {
		return true
	}
	campaign, err := c.Store.GetCampaign(r.Context(), *campaignID)
	if err != nil {
		c.respondStoreError(w, err, "Campaign")
		return false
	}
	if campaign.AccountID != accountID {
		utils.RespondError(w, http.StatusBadRequest, "Campaign belongs to another account")
		return false
	}
	return true
}

func (c *CRMHandlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.LeadPayload
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
	payload.AccountID = accountID
	if !c.checkCampaign(w, r, payload.CampaignID, accountID) {
		return
	}

	lead, err := c.Store.CreateLead(r.Context(), leadFromPayload(payload))
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	c.invalidateAgenda(r, lead.AccountID)
	utils.RespondJSON(w, http.StatusCreated, lead)
}

// ListLeads supports ?accountId, ?campaignId, ?status, ?limit, ?offset and a fuzzy ?q
// over name, email and phone.
func (c *CRMHandlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	filter := repo.LeadFilter{AccountID: accountID, ConversionStatus: r.URL.Query().Get("status")}
	for name, dst := range map[string]*int{"campaignId": &filter.CampaignID, "limit": &filter.Limit, "offset": &filter.Offset} {
		v, err := utils.QueryInt(r, name)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		*dst = v
	}

	search := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, offset := filter.Limit, filter.Offset
	if search != "" {
		filter.Limit, filter.Offset = 0, 0
	}

	leads, err := c.Store.ListLeads(r.Context(), filter)
	if err != nil {
		c.respondStoreError(w, err, "Leads")
		return
	}
	if search != "" {
		leads = page(matchLeads(leads, search), limit, offset)
	}
	utils.RespondJSON(w, http.StatusOK, leads)
}

func matchLeads(leads []models.Lead, q string) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		candidates := []string{l.FullName}
		if l.Email != nil {
			candidates = append(candidates, *l.Email)
		}
		if l.Phone != nil {
			candidates = append(candidates, *l.Phone)
		}
		for _, s := range candidates {
			if fuzzy.MatchNormalizedFold(q, s) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

func page(leads []models.Lead, limit, offset int) []models.Lead {
	if offset >= len(leads) {
		return []models.Lead{}
	}
	leads = leads[offset:]
	if limit > 0 && limit < len(leads) {
		leads = leads[:limit]
	}
	return leads
}

// loadLead fetches a lead the caller may see, writing the error response otherwise.
func (c *CRMHandlers) loadLead(w http.ResponseWriter, r *http.Request, cl caller) (models.Lead, bool) {
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid lead ID")
		return models.Lead{}, false
	}
	lead, err := c.Store.GetLead(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return models.Lead{}, false
	}
	if !c.canSee(cl, lead.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "Lead not found")
		return models.Lead{}, false
	}
	return lead, true
}

// GetLead returns the lead with its tags.
func (c *CRMHandlers) GetLead(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	tags, err := c.Store.ListLeadTags(r.Context(), lead.ID)
	if err != nil {
		c.respondStoreError(w, err, "Lead tags")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"lead": lead,
		"tags": tags,
	})
}

func (c *CRMHandlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	var payload models.LeadPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !c.checkCampaign(w, r, payload.CampaignID, lead.AccountID) {
		return
	}
	normalized := leadFromPayload(payload)
	payload.FullName = normalized.FullName
	if payload.ConversionStatus == "" {
		payload.ConversionStatus = lead.ConversionStatus
	}

	updated, err := c.Store.UpdateLead(r.Context(), lead.ID, payload)
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	c.invalidateAgenda(r, lead.AccountID)
	utils.RespondJSON(w, http.StatusOK, updated)
}

// SetAutomationStatus force-overwrites the engine-owned automation state.
func (c *CRMHandlers) SetAutomationStatus(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	var payload models.AutomationStatusPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Store.SetAutomationStatus(r.Context(), lead.ID, payload.AutomationStatus); err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	c.Log.Info("User %d forced automation status of lead %d: %s -> %s", cl.UserID, lead.ID, lead.AutomationStatus, payload.AutomationStatus)
	utils.RespondMessage(w, http.StatusOK, "Automation status updated", map[string]interface{}{
		"id":                lead.ID,
		"automation_status": payload.AutomationStatus,
	})
}

// CloseLead marks a lead DND or Lost. There is no delete.
func (c *CRMHandlers) CloseLead(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	var payload models.CloseLeadPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Store.CloseLead(r.Context(), lead.ID, payload.Outcome); err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	c.invalidateAgenda(r, lead.AccountID)
	closed, err := c.Store.GetLead(r.Context(), lead.ID)
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	utils.RespondJSON(w, http.StatusOK, closed)
}

func (c *CRMHandlers) RecordLeadScore(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	var payload models.LeadScorePayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := c.Store.RecordLeadScore(r.Context(), models.LeadScoreSnapshot{
		LeadID:       lead.ID,
		Score:        payload.Score,
		SnapshotDate: payload.SnapshotDate,
	})
	if err != nil {
		c.respondStoreError(w, err, "Score snapshot for "+payload.SnapshotDate)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, snap)
}

func (c *CRMHandlers) ListLeadScores(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	scores, err := c.Store.ListLeadScores(r.Context(), lead.ID)
	if err != nil {
		c.respondStoreError(w, err, "Score history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, scores)
}

func (c *CRMHandlers) GetLeadScoreTrend(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return
	}
	scores, err := c.Store.ListLeadScores(r.Context(), lead.ID)
	if err != nil {
		c.respondStoreError(w, err, "Score history")
		return
	}
	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
	}
	utils.RespondJSON(w, http.StatusOK, trend.Of(values))
}

// loadLeadTag resolves both path ids and checks they share an account.
func (c *CRMHandlers) loadLeadTag(w http.ResponseWriter, r *http.Request) (models.Lead, models.Tag, bool) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return models.Lead{}, models.Tag{}, false
	}
	lead, ok := c.loadLead(w, r, cl)
	if !ok {
		return models.Lead{}, models.Tag{}, false
	}
	tagID, err := utils.PathInt(r, "tagId")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid tag ID")
		return models.Lead{}, models.Tag{}, false
	}
	tag, err := c.Store.GetTag(r.Context(), tagID)
	if err != nil {
		c.respondStoreError(w, err, "Tag")
		return models.Lead{}, models.Tag{}, false
	}
	if tag.AccountID != lead.AccountID {
		utils.RespondError(w, http.StatusNotFound, "Tag not found")
		return models.Lead{}, models.Tag{}, false
	}
	return lead, tag, true
}

func (c *CRMHandlers) AttachTag(w http.ResponseWriter, r *http.Request) {
	lead, tag, ok := c.loadLeadTag(w, r)
	if !ok {
		return
	}
	if err := c.Store.AttachTag(r.Context(), lead.ID, tag.ID); err != nil {
		c.respondStoreError(w, err, "Lead tag")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"lead_id": lead.ID, "tag_id": tag.ID})
}

func (c *CRMHandlers) DetachTag(w http.ResponseWriter, r *http.Request) {
	lead, tag, ok := c.loadLeadTag(w, r)
	if !ok {
		return
	}
	if err := c.Store.DetachTag(r.Context(), lead.ID, tag.ID); err != nil {
		c.respondStoreError(w, err, "Lead tag")
		return
	}
	utils.RespondJSON(w, http.StatusOK, nil)
}
