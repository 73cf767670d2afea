package models

import "time"

// Edit actions recorded in an item's history.
const (
	ActionAdded   = "added"
	ActionEdited  = "edited"
	ActionRemoved = "removed"
)

// Item represents a single list entry owned by exactly one group.
// Group scoping is by collection path, not a field.
//
// AddedBy is the author's display name captured at write time. It is
// intentionally never refreshed if the user later renames; the
// authoritative identity is UserID.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	// Not part of the stored document body.
	ID string `json:"-"`

	// Name is the item description (e.g., "Milk"). Required.
	Name string `json:"name"`

	// IsChecked marks the item as done/bought.
	IsChecked bool `json:"isChecked"`

	// AddedBy is the author's display name at creation time.
	AddedBy string `json:"addedBy"`

	// UserID is the author's id; settlement attributes the price here.
	UserID string `json:"userID"`

	// Timestamp is the creation time. Live feeds order newest first.
	Timestamp time.Time `json:"timestamp"`

	// Price is the optional non-negative amount. Items without a price
	// participate in no settlement figures.
	Price *float64 `json:"price,omitempty"`

	// Category is an optional grouping label.
	Category string `json:"category,omitempty"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// EditHistory is append-only: every mutation appends exactly one
	// record and never rewrites or removes earlier ones. Deleting the
	// item deletes the history with it.
	EditHistory []EditRecord `json:"editHistory"`
}

// EditRecord is one provenance entry. Immutable once appended.
type EditRecord struct {
	UserID    string    `json:"userID"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}
