package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/identity"
	"github.com/alex-morrisonn/trolly/internal/models"
)

// GroupService manages group membership. Membership changes cascade
// into each affected user's group index (User.GroupIDs).
//
// The cascade is a two-step, non-transactional write: the group
// document first, the user document second. A failure after step one is
// surfaced to the caller and step one is not rolled back; a
// reconciliation pass is the owner's responsibility. Callers must treat
// these operations as best-effort composites, not atomic ones.
type GroupService struct {
	groups    *engine.Collection[models.Group]
	users     *engine.Collection[models.User]
	directory identity.Directory
}

// NewGroupService creates a GroupService over the given collections.
func NewGroupService(groups *engine.Collection[models.Group], users *engine.Collection[models.User], directory identity.Directory) *GroupService {
	return &GroupService{groups: groups, users: users, directory: directory}
}

// CreateGroup creates a group whose sole member is the creator, as
// admin, then records the group in the creator's group index.
//
// On a step-two failure the group still exists; the returned group is
// non-nil whenever step one succeeded, even alongside an error.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string, creator identity.Context) (*models.Group, error) {
	if !creator.Valid() {
		return nil, engine.ErrUnauthenticated
	}

	now := time.Now()
	group := models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creator.UserID,
		Members: []models.GroupMember{{
			UserID:   creator.UserID,
			Role:     models.RoleAdmin,
			JoinedAt: now,
		}},
		CreatedAt: now,
	}

	id, err := s.groups.Add(ctx, group)
	if err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}
	group.ID = id
	slog.Info("Group created", "group_id", id, "name", name, "created_by", creator.UserID)

	if err := s.indexGroup(ctx, creator.UserID, id); err != nil {
		slog.Warn("Group created but user index update failed",
			"group_id", id, "user_id", creator.UserID, "error", err)
		return &group, err
	}
	return &group, nil
}

// GroupsForUser registers a standing query over the groups whose member
// list contains userID. The current set is delivered before the call
// returns; every group change system-wide re-evaluates the predicate.
// Results are ordered by creation time, oldest first.
//
// When the caller's currently selected group drops out of a delivered
// snapshot (for example after LeaveGroup), the caller re-selects from
// the remaining set, or none.
func (s *GroupService) GroupsForUser(userID string, onSnapshot func([]models.Group), onError func(error)) *engine.Subscription {
	return s.groups.Subscribe(
		func(g models.Group) bool { return g.HasMember(userID) },
		func(a, b models.Group) bool { return a.CreatedAt.Before(b.CreatedAt) },
		onSnapshot,
		onError,
	)
}

// InviteMember resolves email through the directory and appends the
// user to the group's member list, then records the group in the
// invited user's group index.
//
// The already-member check scans the member list read at call time, so
// two concurrent invites of the same user can race; the group
// validation rejects the duplicate write that would otherwise result.
func (s *GroupService) InviteMember(ctx context.Context, email, groupID string, role models.MemberRole) error {
	if role == "" {
		role = models.RoleEditor
	}

	userID, err := s.directory.ResolveUserByEmail(ctx, email)
	if err != nil {
		slog.Error("InviteMember failed to resolve email", "group_id", groupID, "error", err)
		return err
	}

	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HasMember(userID) {
		return fmt.Errorf("user %s in group %s: %w", userID, groupID, engine.ErrAlreadyMember)
	}

	group.Members = append(group.Members, models.GroupMember{
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	})
	if err := s.groups.Update(ctx, groupID, group); err != nil {
		slog.Error("InviteMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	slog.Info("Member invited", "group_id", groupID, "user_id", userID, "role", role)

	if err := s.indexGroup(ctx, userID, groupID); err != nil {
		slog.Warn("Member added but user index update failed",
			"group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// LeaveGroup removes userID from the group's member list. If the
// resulting list is empty the group is destroyed outright, not updated.
// Either way the group is removed from the user's group index.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.RemoveMember(userID) {
		return fmt.Errorf("user %s in group %s: %w", userID, groupID, engine.ErrNotFound)
	}

	if len(group.Members) == 0 {
		if err := s.groups.Remove(ctx, groupID); err != nil {
			slog.Error("LeaveGroup failed to destroy empty group", "group_id", groupID, "error", err)
			return err
		}
		slog.Info("Group destroyed, last member left", "group_id", groupID, "user_id", userID)
	} else {
		if err := s.groups.Update(ctx, groupID, group); err != nil {
			slog.Error("LeaveGroup failed", "group_id", groupID, "user_id", userID, "error", err)
			return err
		}
		slog.Info("Member left group", "group_id", groupID, "user_id", userID)
	}

	if err := s.unindexGroup(ctx, userID, groupID); err != nil {
		slog.Warn("Membership changed but user index update failed",
			"group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (s *GroupService) indexGroup(ctx context.Context, userID, groupID string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.AddGroup(groupID)
	return s.users.Update(ctx, userID, user)
}

func (s *GroupService) unindexGroup(ctx context.Context, userID, groupID string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.RemoveGroup(groupID)
	return s.users.Update(ctx, userID, user)
}
