package handlers

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strconv"

	"leadawaker/internal/ingest"
	"leadawaker/internal/models"
	"leadawaker/internal/utils"
)

const maxIntakeBody = 4 << 20

// IntakeLeads accepts lead records pushed by the automation engine for one
// account. The body may be a list or a {"list": [...]} envelope and must carry
// the account's X-Webhook-Secret.
func (c *CRMHandlers) IntakeLeads(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	account, err := c.Store.GetAccount(r.Context(), accountID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}
	secret := r.Header.Get("X-Webhook-Secret")
	if account.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(account.WebhookSecret)) != 1 {
		c.Log.Warn("Rejected intake for account %d from %s", accountID, r.RemoteAddr)
		utils.RespondError(w, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}
	if account.Status != models.AccountStatusActive {
		utils.RespondError(w, http.StatusConflict, "Account is not active")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIntakeBody))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	records, err := ingest.DecodeList(body)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var accepted, skipped int
	for _, rec := range records {
		lead := ingest.NormalizeLead(rec, account.ID)
		if lead.ExternalID == nil {
			skipped++
			continue
		}
		columns := ingest.PresentLeadColumns(rec)
		if lead.CampaignID != nil {
			local, err := c.Store.CampaignIDByExternal(r.Context(), account.ID, strconv.Itoa(*lead.CampaignID))
			if err != nil {
				lead.CampaignID = nil
				columns = columns.Without("campaign_id")
			} else {
				lead.CampaignID = &local
			}
		}
		if _, err := c.Store.UpsertLead(r.Context(), lead, columns); err != nil {
			c.respondStoreError(w, err, "Lead")
			return
		}
		accepted++
	}
	if accepted > 0 {
		c.invalidateAgenda(r, account.ID)
	}
	c.Metrics.AddSynced("intake_leads", accepted)
	c.Log.Info("Intake for account %d: %d accepted, %d skipped", account.ID, accepted, skipped)
	utils.RespondJSON(w, http.StatusAccepted, map[string]int{
		"accepted": accepted,
		"skipped":  skipped,
	})
}
