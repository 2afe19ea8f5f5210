package handlers

import (
	"net/http"
	"strings"

	"leadawaker/internal/models"
	"leadawaker/internal/utils"
)

func (c *CRMHandlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.TagPayload
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
	payload.Name = strings.TrimSpace(payload.Name)

	tag, err := c.Store.CreateTag(r.Context(), payload)
	if err != nil {
		c.respondStoreError(w, err, "Tag "+payload.Name)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, tag)
}

func (c *CRMHandlers) ListTags(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	tags, err := c.Store.ListTags(r.Context(), accountID)
	if err != nil {
		c.respondStoreError(w, err, "Tags")
		return
	}
	utils.RespondJSON(w, http.StatusOK, tags)
}
