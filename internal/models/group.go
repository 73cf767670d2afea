package models

import "time"

// MemberRole is the permission level of a group member.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

// Group represents a shared collection of members.
//
// Invariants enforced by the membership service:
//   - Members is never empty while the group exists; the group is
//     hard-deleted exactly when the last member leaves.
//   - A userID appears at most once in Members.
//   - CreatedBy is immutable after creation and need not remain a
//     current member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	// Not part of the stored document body.
	ID string `json:"-"`

	// Name is the display name of the group (e.g., "Flat 12", "Trip").
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// CreatedBy is the user ID of the creator.
	CreatedBy string `json:"createdBy"`

	// Members is ordered by join time.
	Members []GroupMember `json:"members"`

	// CreatedAt is when the group was created.
	CreatedAt time.Time `json:"createdAt"`
}

// GroupMember is one entry in a group's member list.
type GroupMember struct {
	UserID   string     `json:"userID"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// HasMember reports whether userID is a current member.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// RemoveMember deletes userID from the member list and reports whether
// anything was removed.
func (g *Group) RemoveMember(userID string) bool {
	kept := g.Members[:0]
	removed := false
	for _, m := range g.Members {
		if m.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	g.Members = kept
	return removed
}
