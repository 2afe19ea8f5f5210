package handlers

import (
	"errors"
	"net/http"

	"leadawaker/internal/access"
	"leadawaker/internal/models"
	"leadawaker/internal/sessionstore"
	"leadawaker/internal/utils"
)

// appContext loads the caller's stored UI context, falling back to the
// default. The role always comes from the user record, and an account the
// user can no longer see is reset to their own.
func (c *CRMHandlers) appContext(r *http.Request, cl caller) (sessionstore.AppContext, models.User, error) {
	user, err := c.Store.GetUser(r.Context(), cl.UserID)
	if err != nil {
		return sessionstore.AppContext{}, models.User{}, err
	}
	ac := sessionstore.DefaultContext(user.Role, user.AccountID)
	if c.Sessions != nil {
		stored, err := c.Sessions.LoadContext(user.ID)
		switch {
		case err == nil:
			ac = stored
		case !errors.Is(err, sessionstore.ErrNotFound):
			c.Log.Warn("load app context for user %d: %v", user.ID, err)
		}
	}
	ac.Role = user.Role
	if ac.AccountID != user.AccountID && !c.isAgencyAdmin(callerOf(user)) {
		ac.AccountID = user.AccountID
		ac.SelectedCampaignID = nil
	}
	return ac, user, nil
}

func callerOf(user models.User) caller {
	role, _ := access.ParseRole(user.Role)
	return caller{UserID: user.ID, Role: role, AccountID: user.AccountID}
}

// canSwitchAccount needs both the capability and an agency home account;
// anyone else could not see a second account to switch to.
func (c *CRMHandlers) canSwitchAccount(user models.User) bool {
	cl := callerOf(user)
	return c.policy().CanSwitchAccount(cl.Role) && c.isAgencyAdmin(cl)
}

// GetNavigation lists the sidebar items for the caller's stored role and
// current account context.
func (c *CRMHandlers) GetNavigation(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	ac, user, err := c.appContext(r, cl)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	role, _ := access.ParseRole(user.Role)
	agency := ac.AccountID == c.Params.AgencyAccountID
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"role":               role,
		"agency":             agency,
		"can_switch_account": c.canSwitchAccount(user),
		"items":              c.policy().NavigationFor(role, agency),
	})
}

func (c *CRMHandlers) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	user, err := c.Store.GetUser(r.Context(), cl.UserID)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	role, _ := access.ParseRole(user.Role)
	caps := append([]access.Capability{}, c.policy().Roles[role]...)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"role":         role,
		"capabilities": caps,
	})
}

func (c *CRMHandlers) GetContext(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	ac, _, err := c.appContext(r, cl)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ac)
}

// UpdateContext merges a patch into the caller's UI context. Moving to another
// account needs the accounts.switch capability and an active account.
func (c *CRMHandlers) UpdateContext(w http.ResponseWriter, r *http.Request) {
	cl, ok := c.callerFrom(w, r)
	if !ok {
		return
	}
	var patch sessionstore.ContextPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ac, user, err := c.appContext(r, cl)
	if err != nil {
		c.respondStoreError(w, err, "User")
		return
	}

	if patch.AccountID != nil && *patch.AccountID != ac.AccountID {
		if !c.canSwitchAccount(user) {
			utils.RespondError(w, http.StatusForbidden, "Account switching is not allowed")
			return
		}
		account, err := c.Store.GetAccount(r.Context(), *patch.AccountID)
		if err != nil {
			c.respondStoreError(w, err, "Account")
			return
		}
		if account.Status != models.AccountStatusActive {
			utils.RespondError(w, http.StatusBadRequest, "Account is not active")
			return
		}
	}
	if patch.SelectedCampaignID != nil {
		accountID := ac.AccountID
		if patch.AccountID != nil {
			accountID = *patch.AccountID
		}
		campaign, err := c.Store.GetCampaign(r.Context(), *patch.SelectedCampaignID)
		if err != nil {
			c.respondStoreError(w, err, "Campaign")
			return
		}
		if campaign.AccountID != accountID {
			utils.RespondError(w, http.StatusBadRequest, "Campaign belongs to another account")
			return
		}
	}

	next, err := ac.Apply(patch)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c.Sessions == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Session store is not configured")
		return
	}
	if err := c.Sessions.SaveContext(user.ID, next); err != nil {
		c.Log.Error("save app context for user %d: %v", user.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to save context")
		return
	}
	utils.RespondJSON(w, http.StatusOK, next)
}
