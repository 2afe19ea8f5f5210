package sessionstore

import "fmt"

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// AppContext is the per-user UI state that survives reloads. Role is always
// overwritten from the user record before it is returned.
type AppContext struct {
	Role               string `json:"role"`
	AccountID          int    `json:"account_id"`
	SidebarCollapsed   bool   `json:"sidebar_collapsed"`
	Theme              string `json:"theme"`
	SelectedCampaignID *int   `json:"selected_campaign_id,omitempty"`
}

// DefaultContext is what a user sees on first login.
func DefaultContext(role string, accountID int) AppContext {
	return AppContext{
		Role:      role,
		AccountID: accountID,
		Theme:     ThemeSystem,
	}
}

// ContextPatch carries the fields a client may change; nil means unchanged.
type ContextPatch struct {
	AccountID          *int    `json:"account_id"`
	SidebarCollapsed   *bool   `json:"sidebar_collapsed"`
	Theme              *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	SelectedCampaignID *int    `json:"selected_campaign_id"`
	ClearCampaign      bool    `json:"clear_campaign"`
}

// Apply returns c with the patch merged in. Switching account drops the
// selected campaign since campaigns are account-scoped.
func (c AppContext) Apply(p ContextPatch) (AppContext, error) {
	if p.Theme != nil {
		switch *p.Theme {
		case ThemeLight, ThemeDark, ThemeSystem:
			c.Theme = *p.Theme
		default:
			return c, fmt.Errorf("unknown theme %q", *p.Theme)
		}
	}
	if p.SidebarCollapsed != nil {
		c.SidebarCollapsed = *p.SidebarCollapsed
	}
	if p.AccountID != nil && *p.AccountID != c.AccountID {
		c.AccountID = *p.AccountID
		c.SelectedCampaignID = nil
	}
	if p.SelectedCampaignID != nil {
		id := *p.SelectedCampaignID
		c.SelectedCampaignID = &id
	}
	if p.ClearCampaign {
		c.SelectedCampaignID = nil
	}
	return c, nil
}
