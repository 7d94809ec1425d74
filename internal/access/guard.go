// Package access holds the authorization predicates applied before any
// mutation of users, songs or playlists.
//
// Every check is a pure comparison between the caller's identity and state
// that has already been fetched; a missing resource must be reported as not
// found by the caller before Check is consulted.
package access

import "errors"

// ErrForbidden is returned when a rule rejects the identity.
var ErrForbidden = errors.New("forbidden")

// Identity is the caller as resolved from the bearer credential.
type Identity struct {
	UserID  string
	Name    string
	IsAdmin bool
}

// Rule decides whether an identity may proceed.
type Rule interface {
	Allows(id Identity) bool
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(id Identity) bool

// Allows implements Rule.
func (f RuleFunc) Allows(id Identity) bool { return f(id) }

// Owned is implemented by resources with a single owner.
type Owned interface {
	OwnerID() string
}

// Authenticated allows any resolved identity.
func Authenticated() Rule {
	return RuleFunc(func(id Identity) bool { return id.UserID != "" })
}

// Admin allows identities carrying the administrator flag.
func Admin() Rule {
	return RuleFunc(func(id Identity) bool { return id.UserID != "" && id.IsAdmin })
}

// Owner allows only the owner of resource. Administrators get no bypass.
func Owner(resource Owned) Rule {
	return RuleFunc(func(id Identity) bool {
		return id.UserID != "" && resource.OwnerID() == id.UserID
	})
}

// SelfOrAdmin allows the user identified by userID, or an administrator.
func SelfOrAdmin(userID string) Rule {
	return RuleFunc(func(id Identity) bool {
		return id.UserID != "" && (id.UserID == userID || id.IsAdmin)
	})
}

// Check returns ErrForbidden unless rule allows id.
func Check(id Identity, rule Rule) error {
	if !rule.Allows(id) {
		return ErrForbidden
	}
	return nil
}
