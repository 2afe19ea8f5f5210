package handlers

import (
	"net/http"

	"leadawaker/internal/access"
	"leadawaker/internal/models"
	"leadawaker/internal/utils"
)

func (c *CRMHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	accountID, ok := c.accountParam(w, r, cl)
	if !ok {
		return
	}
	users, err := c.Store.ListUsers(r.Context(), accountID)
	if err != nil {
		c.respondStoreError(w, err, "Users")
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}

// CreateUser lets an admin add a user to an account they manage.
func (c *CRMHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.UserRegistrationPayload
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
		accountID = cl.AccountID
	}
	if _, err := c.Store.GetAccount(r.Context(), accountID); err != nil {
		c.respondStoreError(w, err, "Account")
		return
	}
	role := payload.Role
	if role == "" {
		role = string(access.RoleViewer)
	}

	user, err := c.createUser(r.Context(), payload, role, accountID)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

func (c *CRMHandlers) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	id, err := utils.PathInt(r, "id")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	var payload models.RolePayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := c.Store.GetUser(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	if !c.canSee(cl, user.AccountID) {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.ID == cl.UserID && payload.Role != user.Role {
		utils.RespondError(w, http.StatusBadRequest, "You cannot change your own role")
		return
	}
	if err := c.Store.UpdateUserRole(r.Context(), id, payload.Role, payload.Status); err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	updated, err := c.Store.GetUser(r.Context(), id)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	c.Log.Info("User %d set role of user %d to %s", cl.UserID, id, payload.Role)
	utils.RespondJSON(w, http.StatusOK, updated)
}

// GetProfile returns the caller's own user record.
func (c *CRMHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	user, err := c.Store.GetUser(r.Context(), cl.UserID)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile changes email and name. A new password needs the current one.
func (c *CRMHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var payload models.ProfilePayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := c.Store.GetUser(r.Context(), cl.UserID)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}

	var hash string
	if payload.NewPassword != "" {
		if user.PasswordHash == utils.OIDCPasswordPlaceholder {
			utils.RespondError(w, http.StatusBadRequest, "Password is managed by your identity provider")
			return
		}
		if !utils.CheckPassword(user.PasswordHash, payload.CurrentPassword) {
			utils.RespondError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		hash, err = utils.GeneratePassword(payload.NewPassword)
		if err != nil {
			c.Log.Error("Error hashing password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error processing password")
			return
		}
	}
	if payload.FullName == "" {
		payload.FullName = user.FullName
	}

	if err := c.Store.UpdateProfile(r.Context(), user.ID, payload.Email, payload.FullName, hash); err != nil {
		c.respondStoreError(w, err, "Email "+payload.Email)
		return
	}
	updated, err := c.Store.GetUser(r.Context(), user.ID)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Profile updated", updated)
}
