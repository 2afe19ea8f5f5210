package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"leadawaker/internal/models"
	"leadawaker/internal/oidc"
	"leadawaker/internal/repo"
	"leadawaker/internal/utils"
)

const oidcStateCookie = "oidc_state"

// FindOrCreateUserByEmail links an OIDC identity to a local user. New users
// join the agency account as Viewer and can only sign in through OIDC.
func (c *CRMHandlers) FindOrCreateUserByEmail(ctx context.Context, claims oidc.Claims) (models.User, error) {
	user, err := c.Store.GetUserByEmail(ctx, claims.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, err
	}

	username := strings.Split(claims.Email, "@")[0]
	return c.Store.CreateUser(ctx, models.User{
		AccountID:    c.Params.AgencyAccountID,
		Username:     username,
		Email:        claims.Email,
		PasswordHash: utils.OIDCPasswordPlaceholder,
		FullName:     claims.Name,
		Role:         models.DefaultRole,
	})
}

func (c *CRMHandlers) oidcEnabled(w http.ResponseWriter) bool {
	if c.OIDC == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "OIDC login is not configured")
		return false
	}
	return true
}

func (c *CRMHandlers) OIDCLoginHandler(w http.ResponseWriter, r *http.Request) {
	if !c.oidcEnabled(w) {
		return
	}
	state, err := utils.GenerateOIDCState()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate random state")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oidcStateCookie,
		Value:    state,
		Path:     "/login/oidc",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   c.Params.TLSEnabled(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, c.OIDC.OauthConfig.AuthCodeURL(state), http.StatusFound)
}

func (c *CRMHandlers) OIDCCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if !c.oidcEnabled(w) {
		return
	}
	ctx := r.Context()

	cookie, err := r.Cookie(oidcStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		utils.RespondError(w, http.StatusBadRequest, "Invalid OIDC state")
		return
	}

	token, err := c.OIDC.OauthConfig.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		c.Log.Warn("OIDC token exchange failed: %v", err)
		utils.RespondError(w, http.StatusUnauthorized, "Failed to exchange token")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "No id_token field in token")
		return
	}

	idToken, err := c.OIDC.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.Log.Warn("OIDC token verification failed: %v", err)
		utils.RespondError(w, http.StatusUnauthorized, "Failed to verify ID Token")
		return
	}

	var claims oidc.Claims
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		utils.RespondError(w, http.StatusUnauthorized, "ID Token has no email claim")
		return
	}

	user, err := c.FindOrCreateUserByEmail(ctx, claims)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	if user.Status == models.UserStatusInactive {
		utils.RespondError(w, http.StatusUnauthorized, "User is inactive, Contact administrator to configure your user")
		return
	}

	jwtToken, err := utils.GenerateJWT(user.ID, user.Role, user.AccountID)
	if err != nil {
		c.Log.Error("JWT generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	if err := c.Sessions.SaveIDToken(user.ID, rawIDToken, token.Expiry); err != nil {
		c.Log.Warn("Failed to save ID token for user %d: %v", user.ID, err)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to serialize user")
		return
	}

	redirectURL := fmt.Sprintf("%s/oidc/callback?token=%s&user=%s",
		strings.TrimRight(c.Params.WebUiUrl, "/"), url.QueryEscape(jwtToken), url.QueryEscape(string(userJSON)))
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (c *CRMHandlers) OIDCLogoutHandler(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok || !c.oidcEnabled(w) {
		return
	}

	idToken, err := c.Sessions.GetIDToken(cl.UserID)
	if err != nil {
		c.Log.Debug("No ID token stored for user %d: %v", cl.UserID, err)
	}
	if err := c.Sessions.DeleteIDToken(cl.UserID); err != nil {
		c.Log.Warn("Failed to delete ID token for user %d: %v", cl.UserID, err)
	}

	postLogout := strings.TrimRight(c.Params.WebUiUrl, "/") + "/login"
	http.Redirect(w, r, c.OIDC.EndSessionURL(idToken, postLogout), http.StatusFound)
}
