package models

// User represents a registered user account.
//
// The account itself is owned by the identity provider: sign-up creates
// it and nothing in this engine ever deletes it. The engine reads ID and
// DisplayName, and writes GroupIDs as a side effect of group membership
// changes.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	// Not part of the stored document body.
	ID string `json:"-"`

	// Email is the user's email address (unique). Used by the directory
	// lookup when inviting members.
	Email string `json:"email"`

	// DisplayName is the name shown to other members.
	DisplayName string `json:"displayName"`

	// PhotoURL is an optional avatar URL.
	PhotoURL string `json:"photoURL,omitempty"`

	// GroupIDs is the set of groups the user belongs to, maintained by
	// the membership service on join and leave.
	GroupIDs []string `json:"groups"`

	// PasswordHash is the bcrypt hash used by password authentication.
	// Never serialized into change feeds consumed by presentation code.
	PasswordHash string `json:"passwordHash,omitempty"`
}

// HasGroup reports whether the user's group index contains groupID.
func (u *User) HasGroup(groupID string) bool {
	for _, id := range u.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// AddGroup appends groupID to the user's group index if absent.
func (u *User) AddGroup(groupID string) {
	if !u.HasGroup(groupID) {
		u.GroupIDs = append(u.GroupIDs, groupID)
	}
}

// RemoveGroup deletes groupID from the user's group index.
func (u *User) RemoveGroup(groupID string) {
	kept := u.GroupIDs[:0]
	for _, id := range u.GroupIDs {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	u.GroupIDs = kept
}
