package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alex-morrisonn/trolly/internal/calculator"
	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/identity"
	"github.com/alex-morrisonn/trolly/internal/models"
)

// ItemService manages one group's item list. Every mutation appends
// exactly one edit record to the item's provenance history.
type ItemService struct {
	groupID string
	items   *engine.Collection[models.Item]
}

// NewItemService creates an ItemService scoped to groupID.
func NewItemService(hub *engine.Hub, groupID string) *ItemService {
	return &ItemService{
		groupID: groupID,
		items:   NewItemCollection(hub, groupID),
	}
}

// GroupID returns the owning group.
func (s *ItemService) GroupID() string { return s.groupID }

// AddItem creates an unchecked item authored by author, seeding its
// history with a single "added" record. AddedBy captures the author's
// display name at this moment and is never refreshed afterwards.
func (s *ItemService) AddItem(ctx context.Context, name string, price *float64, category, notes string, author identity.Context) (*models.Item, error) {
	if !author.Valid() {
		return nil, engine.ErrUnauthenticated
	}

	now := time.Now()
	item := models.Item{
		Name:      name,
		AddedBy:   author.DisplayName,
		UserID:    author.UserID,
		Timestamp: now,
		Price:     price,
		Category:  category,
		Notes:     notes,
		EditHistory: []models.EditRecord{{
			UserID:    author.UserID,
			UserName:  author.DisplayName,
			Timestamp: now,
			Action:    models.ActionAdded,
		}},
	}

	id, err := s.items.Add(ctx, item)
	if err != nil {
		slog.Error("AddItem failed", "group_id", s.groupID, "name", name, "error", err)
		return nil, err
	}
	item.ID = id
	slog.Info("Item added", "group_id", s.groupID, "item_id", id, "user_id", author.UserID)
	return &item, nil
}

// UpdateItem appends an "edited" record to the item's history and
// writes the full document back.
//
// The write is last-writer-wins over the whole document: item must be
// the latest known snapshot. A stale snapshot silently discards edits
// made concurrently by others; no conflict is raised.
func (s *ItemService) UpdateItem(ctx context.Context, item models.Item, actor identity.Context) error {
	if !actor.Valid() {
		return engine.ErrUnauthenticated
	}

	item.EditHistory = append(item.EditHistory, models.EditRecord{
		UserID:    actor.UserID,
		UserName:  actor.DisplayName,
		Timestamp: time.Now(),
		Action:    models.ActionEdited,
	})

	if err := s.items.Update(ctx, item.ID, item); err != nil {
		slog.Error("UpdateItem failed", "group_id", s.groupID, "item_id", item.ID, "error", err)
		return err
	}
	slog.Info("Item updated", "group_id", s.groupID, "item_id", item.ID, "user_id", actor.UserID)
	return nil
}

// ToggleChecked flips the item's checked state through the same path as
// UpdateItem. History records the toggle as a plain "edited" entry,
// indistinguishable from a content edit.
func (s *ItemService) ToggleChecked(ctx context.Context, item models.Item, actor identity.Context) error {
	item.IsChecked = !item.IsChecked
	return s.UpdateItem(ctx, item, actor)
}

// DeleteItem removes the item entirely. No tombstone is written: the
// edit history disappears with the document.
func (s *ItemService) DeleteItem(ctx context.Context, itemID string) error {
	if err := s.items.Remove(ctx, itemID); err != nil {
		slog.Error("DeleteItem failed", "group_id", s.groupID, "item_id", itemID, "error", err)
		return err
	}
	slog.Info("Item deleted", "group_id", s.groupID, "item_id", itemID)
	return nil
}

// LiveItems registers a standing query over the group's items, newest
// first. The current set is delivered before the call returns.
func (s *ItemService) LiveItems(onSnapshot func([]models.Item), onError func(error)) *engine.Subscription {
	return s.items.Subscribe(
		nil,
		func(a, b models.Item) bool { return a.Timestamp.After(b.Timestamp) },
		onSnapshot,
		onError,
	)
}

// Summary computes the expense settlement over the group's current item
// snapshot. It reads state once and has no side effects.
func (s *ItemService) Summary(ctx context.Context) (models.ExpenseSummary, error) {
	items, err := s.items.Snapshot(ctx,
		nil,
		func(a, b models.Item) bool { return a.Timestamp.After(b.Timestamp) },
	)
	if err != nil {
		return models.ExpenseSummary{}, err
	}
	return calculator.Summarize(items), nil
}
