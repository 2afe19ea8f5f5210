package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Guard answers route-level authorization questions from the same table that
// drives navigation.
type Guard struct {
	enforcer *casbin.Enforcer
}

func NewGuard(p *Policy) (*Guard, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("access: load model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("access: init enforcer: %w", err)
	}
	for role, caps := range p.Roles {
		for _, c := range caps {
			obj, act := c.Split()
			if _, err := e.AddPolicy(string(role), obj, act); err != nil {
				return nil, fmt.Errorf("access: add policy %s %s: %w", role, c, err)
			}
		}
	}
	return &Guard{enforcer: e}, nil
}

// Allowed reports whether role holds capability c. Enforcer errors deny.
func (g *Guard) Allowed(role Role, c Capability) bool {
	obj, act := c.Split()
	ok, err := g.enforcer.Enforce(string(role), obj, act)
	return err == nil && ok
}
