// Package service exposes the domain-shaped operations built on top of
// the replicated collections: group membership and per-group item
// lists. Callers never touch raw documents.
package service

import (
	"fmt"

	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/models"
)

// Collection paths. Items are scoped under their group so group scoping
// needs no field on the document.
const (
	UsersPath  = "users"
	GroupsPath = "groups"
)

// ItemsPath returns the collection path of one group's items.
func ItemsPath(groupID string) string {
	return GroupsPath + "/" + groupID + "/items"
}

// NewUserCollection builds the replicated users collection. It is the
// sole writer of user documents; construct it once per hub.
func NewUserCollection(hub *engine.Hub) *engine.Collection[models.User] {
	return engine.NewCollection(hub, UsersPath,
		engine.WithIdentify(func(u *models.User, id string) { u.ID = id }),
		engine.WithValidate(func(u *models.User) error {
			if u.Email == "" {
				return &engine.ValidationError{Detail: "user email is required"}
			}
			return nil
		}),
	)
}

// NewGroupCollection builds the replicated groups collection, enforcing
// the membership invariants on every write.
func NewGroupCollection(hub *engine.Hub) *engine.Collection[models.Group] {
	return engine.NewCollection(hub, GroupsPath,
		engine.WithIdentify(func(g *models.Group, id string) { g.ID = id }),
		engine.WithValidate(validateGroup),
	)
}

// NewItemCollection builds the replicated item collection of one group.
func NewItemCollection(hub *engine.Hub, groupID string) *engine.Collection[models.Item] {
	return engine.NewCollection(hub, ItemsPath(groupID),
		engine.WithIdentify(func(i *models.Item, id string) { i.ID = id }),
		engine.WithValidate(validateItem),
	)
}

// validateGroup enforces: non-empty name, a creator, at least one
// member, and no duplicate member userIDs. A group may never be written
// with an empty member list; the last leave destroys it instead.
func validateGroup(g *models.Group) error {
	if g.Name == "" {
		return &engine.ValidationError{Detail: "group name is required"}
	}
	if g.CreatedBy == "" {
		return &engine.ValidationError{Detail: "group creator is required"}
	}
	if len(g.Members) == 0 {
		return &engine.ValidationError{Detail: "group must have at least one member"}
	}
	seen := make(map[string]struct{}, len(g.Members))
	for _, m := range g.Members {
		if _, dup := seen[m.UserID]; dup {
			return &engine.ValidationError{Detail: fmt.Sprintf("duplicate member %s", m.UserID)}
		}
		seen[m.UserID] = struct{}{}
	}
	return nil
}

// validateItem enforces: non-empty name and, when priced, a
// non-negative price.
func validateItem(i *models.Item) error {
	if i.Name == "" {
		return &engine.ValidationError{Detail: "item name is required"}
	}
	if i.Price != nil && *i.Price < 0 {
		return &engine.ValidationError{Detail: "item price must not be negative"}
	}
	return nil
}
