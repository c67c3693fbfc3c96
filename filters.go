package meetsync

import (
	"github.com/anumularoots-svg/pro-sub003/models"
	"github.com/anumularoots-svg/pro-sub003/utils"
)

// This approach aims to simplify the syntax of combining filters.
// For example:
//   filter := Filter.And(Filter.And(Filter)).Or(Filter.Not())
// Instead of:
//   filter := Or(And(Filter, And(Filter, Filter)), Not(Filter)) (excluding the package name)
//
// Since Go does not support type inheritance nor method declaration with multiple receivers,
// everything needs to be explicitly declared.

// Filter is an interface that defines the methods for filtering events.
type Filter interface {
	Check(*Event) bool // Check evaluates if the given event passes the filter conditions.
	And(Filter) Filter // And returns a new filter that combines the current filter with another using logical AND.
	Or(Filter) Filter  // Or returns a new filter that combines the current filter with another using logical OR.
	Xor(Filter) Filter // Xor returns a new filter that combines the current filter with another using logical XOR.
	Not() Filter       // Not returns a new filter that negates the current filter using logical NOT.
}

const (
	// CombineFilterAnd combines filter using logical AND.
	CombineFilterAnd int = iota
	// CombineFilterOr combines filter using logical OR.
	CombineFilterOr
	// CombineFilterXor combines filter using logical XOR.
	CombineFilterXor
)

// CombineFilter is a struct that represents the logical combination of two filters.
type CombineFilter struct {
	Left  Filter // Left represents the first filter to be combined.
	Right Filter // Right represents the second filter to be combined.
	Mode  int    // Mode specifies the combination mode: 0 for AND, 1 for OR, and 2 for XOR.
}

// Check returns the combination of the left and right results.
func (f *CombineFilter) Check(event *Event) bool {
	switch f.Mode {
	case CombineFilterAnd:
		return f.Left.Check(event) && f.Right.Check(event)
	case CombineFilterOr:
		return f.Left.Check(event) || f.Right.Check(event)
	case CombineFilterXor:
		return f.Left.Check(event) != f.Right.Check(event)
	default:
		return false
	}
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *CombineFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *CombineFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *CombineFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *CombineFilter) Not() Filter {
	return &NotFilter{f}
}

// NotFilter is a struct that represents the logical NOT of a filter.
type NotFilter struct {
	Base Filter // Base represents the filter to be negated.
}

// Check returns the logical negation of the filter's result.
func (f *NotFilter) Check(event *Event) bool {
	return !f.Base.Check(event)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *NotFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *NotFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *NotFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *NotFilter) Not() Filter {
	return &NotFilter{f}
}

// UserFilter represents a filter on the participant of an event.
type UserFilter struct {
	Users []string // Users is a list of user ids.
}

// Check checks if the event's participant is in the filter's list of users.
func (f *UserFilter) Check(event *Event) bool {
	if event.Participant == nil {
		return false
	}
	return utils.Contains(f.Users, event.Participant.UserID)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *UserFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *UserFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *UserFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *UserFilter) Not() Filter {
	return &NotFilter{f}
}

// Add adds a user to the filter's list of users.
func (f *UserFilter) Add(userID string) {
	f.Users = append(f.Users, userID)
}

// Remove removes a user from the filter's list of users.
func (f *UserFilter) Remove(userID string) {
	f.Users = utils.Remove(f.Users, userID)
}

// NewUserFilter returns a new `UserFilter`.
func NewUserFilter(userIDs ...string) Filter {
	return &UserFilter{Users: userIDs}
}

// RoleFilter represents a filter on the role of the participant of an event.
type RoleFilter struct {
	Roles []models.Role
}

// Check checks if the event's participant holds one of the roles.
func (f *RoleFilter) Check(event *Event) bool {
	if event.Participant == nil {
		return false
	}
	return utils.Contains(f.Roles, event.Participant.Role)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *RoleFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *RoleFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *RoleFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *RoleFilter) Not() Filter {
	return &NotFilter{f}
}

// NewRoleFilter returns a new `RoleFilter`.
func NewRoleFilter(roles ...models.Role) Filter {
	return &RoleFilter{Roles: roles}
}

// IssuerFilter represents a filter on the issuer of a control message event.
type IssuerFilter struct {
	Issuers []string // Issuers is a list of user ids.
}

// Check checks if the event's control message was issued by one of the users.
func (f *IssuerFilter) Check(event *Event) bool {
	if event.Control == nil {
		return false
	}
	return utils.Contains(f.Issuers, event.Control.IssuedBy)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *IssuerFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *IssuerFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *IssuerFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *IssuerFilter) Not() Filter {
	return &NotFilter{f}
}

// NewIssuerFilter returns a new `IssuerFilter`.
func NewIssuerFilter(userIDs ...string) Filter {
	return &IssuerFilter{Issuers: userIDs}
}
