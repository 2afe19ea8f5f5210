// Package access maps user roles to capabilities and the sidebar items they unlock.
package access

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleAgent   Role = "Agent"
	RoleViewer  Role = "Viewer"
)

// ParseRole is case-insensitive. Unknown roles return false.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleAgent, RoleViewer} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// Capability is "<object>.<action>", e.g. "leads.edit".
type Capability string

const (
	DashboardView      Capability = "dashboard.view"
	LeadsView          Capability = "leads.view"
	LeadsEdit          Capability = "leads.edit"
	ConversationsView  Capability = "conversations.view"
	InteractionsCreate Capability = "interactions.create"
	CampaignsView      Capability = "campaigns.view"
	CampaignsEdit      Capability = "campaigns.edit"
	CalendarView       Capability = "calendar.view"
	AccountsView       Capability = "accounts.view"
	AccountsManage     Capability = "accounts.manage"
	AccountsSwitch     Capability = "accounts.switch"
	TagsView           Capability = "tags.view"
	TagsManage         Capability = "tags.manage"
	PromptsView        Capability = "prompts.view"
	UsersManage        Capability = "users.manage"
	AutomationLogsView Capability = "automation_logs.view"
	SettingsEdit       Capability = "settings.edit"
	MetricsRecord      Capability = "metrics.record"
)

// Split returns the object and action halves.
func (c Capability) Split() (object, action string) {
	s := string(c)
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

type NavItem struct {
	Key        string     `yaml:"key" json:"key"`
	Label      string     `yaml:"label" json:"label"`
	Href       string     `yaml:"href" json:"href"`
	Icon       string     `yaml:"icon" json:"icon"`
	Capability Capability `yaml:"capability" json:"-"`
	AgencyOnly bool       `yaml:"agency_only" json:"-"`
}

// Policy is the parsed role table.
type Policy struct {
	Roles      map[Role][]Capability `yaml:"roles"`
	Navigation []NavItem             `yaml:"navigation"`
}

//go:embed policy.yaml
var defaultPolicyYAML []byte

var (
	defaultOnce   sync.Once
	defaultPolicy *Policy
)

// Default returns the embedded policy.
func Default() *Policy {
	defaultOnce.Do(func() {
		p, err := Load(defaultPolicyYAML)
		if err != nil {
			panic(fmt.Sprintf("access: embedded policy is invalid: %v", err))
		}
		defaultPolicy = p
	})
	return defaultPolicy
}

// Load parses and validates a policy document.
func Load(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	known := map[Capability]bool{}
	for role, caps := range p.Roles {
		if _, ok := ParseRole(string(role)); !ok {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		for _, c := range caps {
			if _, act := c.Split(); act == "" {
				return nil, fmt.Errorf("role %s: malformed capability %q", role, c)
			}
			known[c] = true
		}
	}
	for _, item := range p.Navigation {
		if !known[item.Capability] {
			return nil, fmt.Errorf("nav item %q: capability %q not granted to any role", item.Key, item.Capability)
		}
	}
	return &p, nil
}

// CapabilitiesFor returns the capability set of a role. Unknown roles get an empty set.
func (p *Policy) CapabilitiesFor(role Role) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(p.Roles[role]))
	for _, c := range p.Roles[role] {
		set[c] = struct{}{}
	}
	return set
}

func (p *Policy) Has(role Role, c Capability) bool {
	for _, have := range p.Roles[role] {
		if have == c {
			return true
		}
	}
	return false
}

// NavigationFor lists the sidebar items for a role. Agency-only items require
// the user to be operating inside the agency account.
func (p *Policy) NavigationFor(role Role, agency bool) []NavItem {
	items := make([]NavItem, 0, len(p.Navigation))
	for _, item := range p.Navigation {
		if item.AgencyOnly && !agency {
			continue
		}
		if p.Has(role, item.Capability) {
			items = append(items, item)
		}
	}
	return items
}

// CanSwitchAccount reports whether the account switcher is shown.
func (p *Policy) CanSwitchAccount(role Role) bool {
	return p.Has(role, AccountsSwitch)
}

func CapabilitiesFor(role Role) map[Capability]struct{} { return Default().CapabilitiesFor(role) }

func NavigationFor(role Role, agency bool) []NavItem { return Default().NavigationFor(role, agency) }

func CanSwitchAccount(role Role) bool { return Default().CanSwitchAccount(role) }
