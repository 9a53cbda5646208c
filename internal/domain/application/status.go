package application

import (
	"sort"
	"strings"

	"loantrack/internal/domain/identity"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Rank orders statuses along the lifecycle; both terminal statuses share the top rank.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusVerified:
		return 1
	case StatusApproved, StatusRejected:
		return 2
	}
	return -1
}

func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

type Action string

const (
	ActionVerify  Action = "verify"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) Action { return Action(strings.ToLower(strings.TrimSpace(s))) }

// Rule is the outcome of a permitted (status, action) pair.
type Rule struct {
	Role identity.Role
	To   Status
}

type transitionKey struct {
	from   Status
	action Action
}

var transitions = map[transitionKey]Rule{
	{StatusPending, ActionVerify}:   {Role: identity.RoleVerifier, To: StatusVerified},
	{StatusPending, ActionReject}:   {Role: identity.RoleVerifier, To: StatusRejected},
	{StatusVerified, ActionApprove}: {Role: identity.RoleAdmin, To: StatusApproved},
	{StatusVerified, ActionReject}:  {Role: identity.RoleAdmin, To: StatusRejected},
}

// Lookup returns the rule for a transition, or false when the pair is not permitted.
func Lookup(from Status, action Action) (Rule, bool) {
	r, ok := transitions[transitionKey{from, action}]
	return r, ok
}

// StageFor returns the status a role decides on. Roles without transitions have no stage.
func StageFor(role identity.Role) (Status, bool) {
	for k, r := range transitions {
		if r.Role == role {
			return k.from, true
		}
	}
	return "", false
}

// ActionsAt lists the actions permitted at a status, sorted.
func ActionsAt(from Status) []Action {
	var out []Action
	for k := range transitions {
		if k.from == from {
			out = append(out, k.action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
