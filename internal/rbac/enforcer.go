// Package rbac guards privileged domain transitions with a casbin policy
// keyed on the actor's role.
package rbac

import (
	"fmt"
	"net/http"

	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/user"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Resources and actions referenced by the domain mutation helpers.
const (
	ResourceLeave      = "leave"
	ResourceAttendance = "attendance"
	ResourceTask       = "task"
	ResourceProject    = "project"
	ResourceTeam       = "team"
	ResourceSupport    = "support"

	ActionDecide     = "decide"
	ActionRegularize = "regularize"
	ActionPurge      = "purge"
	ActionManage     = "manage"
	ActionResolve    = "resolve"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer builds the in-memory policy. Admin inherits both Manager and
// HR grants.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("build rbac enforcer: %w", err)
	}

	policies := [][]string{
		{user.RoleManager, ResourceLeave, ActionDecide},
		{user.RoleHR, ResourceLeave, ActionDecide},
		{user.RoleManager, ResourceAttendance, ActionRegularize},
		{user.RoleHR, ResourceAttendance, ActionRegularize},
		{user.RoleManager, ResourceTask, ActionPurge},
		{user.RoleManager, ResourceProject, ActionManage},
		{user.RoleManager, ResourceTeam, ActionManage},
		{user.RoleAdmin, ResourceSupport, ActionResolve},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add rbac policy: %w", err)
		}
	}
	for _, g := range [][]string{
		{user.RoleAdmin, user.RoleManager},
		{user.RoleAdmin, user.RoleHR},
	} {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("add rbac grouping: %w", err)
		}
	}
	return &Enforcer{e: e}, nil
}

// Can reports whether role may perform action on resource.
func (en *Enforcer) Can(role, resource, action string) bool {
	ok, err := en.e.Enforce(role, resource, action)
	return err == nil && ok
}

// Require returns FORBIDDEN when the actor's role lacks the grant.
func (en *Enforcer) Require(actor user.Actor, resource, action string) error {
	if en.Can(actor.Role, resource, action) {
		return nil
	}
	return apperror.New(
		apperror.CodeForbidden,
		fmt.Sprintf("role %s may not %s %s", actor.Role, action, resource),
		http.StatusForbidden,
	)
}
