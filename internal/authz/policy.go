// Package authz holds the declarative permission and status transition tables
// evaluated by the services.
package authz

import (
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionRequestCreate    Action = "request:create"
	ActionRequestRead      Action = "request:read"
	ActionRequestHistory   Action = "request:history"
	ActionRequestListAll   Action = "request:list_all"
	ActionRequestUpdate    Action = "request:update"
	ActionRequestSetStatus Action = "request:set_status"
	ActionRequestDelete    Action = "request:delete"
	ActionRequestAttach    Action = "request:attach"
	ActionRequestExport    Action = "request:export"
	ActionRequestStats     Action = "request:stats"
	ActionCategoryManage   Action = "category:manage"
	ActionAssignmentCreate Action = "assignment:create"
	ActionAssignmentAll    Action = "assignment:read_all"
	ActionUserList         Action = "user:list"
	ActionUserSetRole      Action = "user:set_role"
)

// Scope says whose records a grant covers.
type Scope int

const (
	ScopeOwn Scope = iota + 1
	ScopeAny
)

// Grant is a single permission entry.
type Grant struct {
	Scope       Scope
	PendingOnly bool
}

// Rules maps role and action to a grant. A missing entry denies.
type Rules map[models.UserRole]map[Action]Grant

// Target describes the record an action is applied to. Actions that do not
// address a single record pass the zero value.
type Target struct {
	Owned  bool
	Status models.RequestStatus
}

// Policy evaluates Rules.
type Policy struct {
	rules Rules
}

// NewPolicy wraps custom rules.
func NewPolicy(rules Rules) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the portal's standard permission table.
func DefaultPolicy() *Policy {
	any := Grant{Scope: ScopeAny}
	own := Grant{Scope: ScopeOwn}

	staff := map[Action]Grant{
		ActionRequestRead:      any,
		ActionRequestHistory:   any,
		ActionRequestListAll:   any,
		ActionRequestUpdate:    any,
		ActionRequestSetStatus: any,
		ActionRequestDelete:    any,
		ActionRequestAttach:    any,
		ActionRequestExport:    any,
		ActionRequestStats:     any,
		ActionAssignmentCreate: any,
	}

	deputy := clone(staff)
	deputy[ActionCategoryManage] = any
	deputy[ActionAssignmentAll] = any
	deputy[ActionUserList] = any

	admin := clone(deputy)
	admin[ActionUserSetRole] = any

	return NewPolicy(Rules{
		models.RoleCitizen: {
			ActionRequestCreate:  any,
			ActionRequestRead:    own,
			ActionRequestHistory: own,
			ActionRequestUpdate:  own,
			ActionRequestDelete:  {Scope: ScopeOwn, PendingOnly: true},
			ActionRequestAttach:  own,
		},
		models.RoleStaff:  staff,
		models.RoleDeputy: deputy,
		models.RoleAdmin:  admin,
	})
}

// Allows reports whether role holds any grant for action, ignoring scope.
func (p *Policy) Allows(role models.UserRole, action Action) bool {
	_, ok := p.grant(role, action)
	return ok
}

// Check returns ErrForbidden unless role may perform action on target.
func (p *Policy) Check(role models.UserRole, action Action, target Target) error {
	grant, ok := p.grant(role, action)
	if !ok {
		return appErrors.ErrForbidden
	}
	if grant.Scope == ScopeOwn && !target.Owned {
		return appErrors.ErrForbidden
	}
	if grant.PendingOnly && target.Status != models.StatusPending {
		return appErrors.ErrForbidden
	}
	return nil
}

// CheckRequest is Check for a loaded request.
func (p *Policy) CheckRequest(principal models.Principal, action Action, req *models.Request) error {
	return p.Check(principal.Role, action, Target{
		Owned:  req.UserID == principal.UserID,
		Status: req.Status,
	})
}

func (p *Policy) grant(role models.UserRole, action Action) (Grant, bool) {
	actions, ok := p.rules[role]
	if !ok {
		return Grant{}, false
	}
	grant, ok := actions[action]
	return grant, ok
}

func clone(src map[Action]Grant) map[Action]Grant {
	dst := make(map[Action]Grant, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
