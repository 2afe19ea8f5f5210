package handlers

import (
	"context"
	"errors"
	"net/http"

	"leadawaker/internal/access"
	"leadawaker/internal/models"
	"leadawaker/internal/repo"
	"leadawaker/internal/utils"
)

// RegisterUser handles self-registration. The very first user bootstraps the
// agency account and becomes its Admin; later users join as Viewer.
func (c *CRMHandlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload models.UserRegistrationPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	count, err := c.Store.CountUsers(ctx)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}

	role := models.DefaultRole
	accountID := payload.AccountID
	if count == 0 {
		role = string(access.RoleAdmin)
		accountID, err = c.ensureAgencyAccount(ctx)
		if err != nil {
			c.respondStoreError(w, err, "Account")
			return
		}
	} else {
		if accountID == 0 {
			accountID = c.Params.AgencyAccountID
		}
		if _, err := c.Store.GetAccount(ctx, accountID); err != nil {
			c.respondStoreError(w, err, "Account")
			return
		}
	}

	user, err := c.createUser(ctx, payload, role, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			utils.RespondError(w, http.StatusConflict, "Username or Email already exists")
			return
		}
		c.Log.Warn("Error registering user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Role, user.AccountID)
	if err != nil {
		c.Log.Error("Error generating JWT: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	utils.RespondMessage(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LoginUser handles user login and JWT generation.
func (c *CRMHandlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var payload models.UserLoginPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := c.Store.GetUserByUsername(r.Context(), payload.Username)
	if errors.Is(err, repo.ErrNotFound) {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	if user.Status == models.UserStatusInactive {
		c.Log.Info("Login refused for inactive user %d", user.ID)
		utils.RespondError(w, http.StatusUnauthorized, "User is inactive, Contact administrator to configure your user")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, payload.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Role, user.AccountID)
	if err != nil {
		c.Log.Error("Error generating JWT: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (c *CRMHandlers) createUser(ctx context.Context, p models.UserRegistrationPayload, role string, accountID int) (models.User, error) {
	hash, err := utils.GeneratePassword(p.Password)
	if err != nil {
		return models.User{}, err
	}
	return c.Store.CreateUser(ctx, models.User{
		AccountID:    accountID,
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		FullName:     p.FullName,
		Role:         role,
	})
}

// ensureAgencyAccount returns the agency account id, creating it on an empty database.
func (c *CRMHandlers) ensureAgencyAccount(ctx context.Context) (int, error) {
	if a, err := c.Store.GetAccount(ctx, c.Params.AgencyAccountID); err == nil {
		return a.ID, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return 0, err
	}
	secret, err := utils.GenerateWebhookSecret()
	if err != nil {
		return 0, err
	}
	a, err := c.Store.CreateAccount(ctx, models.AccountPayload{Name: "Agency"}, secret)
	if err != nil {
		return 0, err
	}
	c.Log.Info("Created agency account %d", a.ID)
	return a.ID, nil
}
