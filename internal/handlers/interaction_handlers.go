package handlers

import (
	"net/http"

	"leadawaker/internal/models"
	"leadawaker/internal/utils"
)

// CreateInteraction appends a message to a lead's conversation. Account and
// campaign are taken from the lead, never from the client.
func (c *CRMHandlers) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.InteractionPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := c.Store.GetLead(r.Context(), payload.LeadID)
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	if !c.canSee(cl, lead.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "Lead not found")
		return
	}

	userID := cl.UserID
	created, err := c.Store.AppendInteraction(r.Context(), models.Interaction{
		AccountID:        lead.AccountID,
		CampaignID:       lead.CampaignID,
		LeadID:           lead.ID,
		Direction:        payload.Direction,
		Content:          payload.Content,
		Channel:          payload.Channel,
		TwilioMessageSID: payload.TwilioMessageSID,
		AIGenerated:      payload.AIGenerated,
		AIModel:          payload.AIModel,
		PromptTokens:     payload.PromptTokens,
		CompletionTokens: payload.CompletionTokens,
		Cost:             payload.Cost,
		Sentiment:        payload.Sentiment,
		BumpNumber:       payload.BumpNumber,
		CreatedBy:        &userID,
	})
	if err != nil {
		c.respondStoreError(w, err, "Interaction")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

// ListInteractions requires ?leadId= and returns the conversation oldest first.
func (c *CRMHandlers) ListInteractions(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	leadID, err := utils.QueryInt(r, "leadId")
	if err != nil || leadID <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "leadId is required")
		return
	}
	lead, err := c.Store.GetLead(r.Context(), leadID)
	if err != nil {
		c.respondStoreError(w, err, "Lead")
		return
	}
	if !c.canSee(cl, lead.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "Lead not found")
		return
	}
	interactions, err := c.Store.ListInteractions(r.Context(), lead.ID)
	if err != nil {
		c.respondStoreError(w, err, "Interactions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, interactions)
}

func (c *CRMHandlers) GetInteraction(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid interaction ID")
		return
	}
	interaction, err := c.Store.GetInteraction(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "Interaction")
		return
	}
	if !c.canSee(cl, interaction.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "Interaction not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, interaction)
}
