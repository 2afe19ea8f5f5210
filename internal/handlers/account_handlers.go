package handlers

import (
	"net/http"

	"leadawaker/internal/models"
	"leadawaker/internal/utils"
)

// CreateAccount onboards a client business with a fresh webhook secret.
func (c *CRMHandlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	if !c.isAgencyAdmin(cl) {
		utils.RespondError(w, http.StatusForbidden, "Only the agency can create accounts")
		return
	}

	var payload models.AccountPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	secret, err := utils.GenerateWebhookSecret()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate webhook secret")
		return
	}

	account, err := c.Store.CreateAccount(r.Context(), payload, secret)
	if err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	c.Log.Info("Account %d created by user %d", account.ID, cl.UserID)
	utils.RespondJSON(w, http.StatusCreated, account)
}

func (c *CRMHandlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accounts, err := c.Store.ListAccounts(r.Context())
	if err != nil {
		c.respondStoreError(w, err, "Accounts")
		return
	}
	if !c.isAgencyAdmin(cl) {
		visible := accounts[:0]
		for _, a := range accounts {
			if a.ID == cl.AccountID {
				visible = append(visible, a)
			}
		}
		accounts = visible
	}
	utils.RespondJSON(w, http.StatusOK, accounts)
}

func (c *CRMHandlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	if !c.canSee(cl, id) {
		utils.RespondError(w, http.StatusNotFound, "Account not found")
		return
	}
	account, err := c.Store.GetAccount(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	utils.RespondJSON(w, http.StatusOK, account)
}

func (c *CRMHandlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	if !c.canSee(cl, id) {
		utils.RespondError(w, http.StatusNotFound, "Account not found")
		return
	}

	var payload models.AccountPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := c.Store.UpdateAccount(r.Context(), id, payload)
	if err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	utils.RespondJSON(w, http.StatusOK, account)
}

// DeactivateAccount is the only way to retire an account. The agency account itself cannot be retired.
func (c *CRMHandlers) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	if !c.isAgencyAdmin(cl) {
		utils.RespondError(w, http.StatusForbidden, "Only the agency can deactivate accounts")
		return
	}
	if id == c.Params.AgencyAccountID {
		utils.RespondError(w, http.StatusBadRequest, "The agency account cannot be deactivated")
		return
	}
	if err := c.Store.SetAccountStatus(r.Context(), id, models.AccountStatusInactive); err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	c.Log.Info("Account %d deactivated by user %d", id, cl.UserID)
	utils.RespondMessage(w, http.StatusOK, "Account deactivated", map[string]interface{}{"id": id, "status": models.AccountStatusInactive})
}
