package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/pkg/api"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	accounts *account.Store
	logger   *slog.Logger
}

// NewGroupService creates a new GroupService backed by the account store.
func NewGroupService(accounts *account.Store, logger *slog.Logger) *GroupService {
	return &GroupService{accounts: accounts, logger: logger}
}

// ListGroups returns the caller's saved groups and the plan's limit.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.Get(ctx, sess.Username)
	if err != nil {
		s.logger.Error("ListGroups failed", "username", sess.Username, "error", err)
		return nil, accountError(err)
	}
	sess.Refresh(user)

	limit := user.PlanType.MaxGroups()
	if limit == math.MaxInt {
		limit = 0
	}

	s.logger.Info("ListGroups successful", "username", user.Username, "count", len(user.Groups))
	return connect.NewResponse(&api.ListGroupsResponse{
		Groups: toAPIGroups(user.Groups),
		Limit:  limit,
	}), nil
}

// SaveGroup creates or overwrites a group.
func (s *GroupService) SaveGroup(ctx context.Context, req *connect.Request[api.SaveGroupRequest]) (*connect.Response[api.SaveGroupResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SaveGroup request received",
		"username", sess.Username,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if err := s.accounts.SaveGroup(ctx, sess.Username, req.Msg.Name, req.Msg.Members); err != nil {
		s.logger.Warn("SaveGroup failed", "username", sess.Username, "name", req.Msg.Name, "error", err)
		return nil, accountError(err)
	}

	group, err := s.reload(ctx, sess, req.Msg.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Group saved", "username", sess.Username, "name", group.Name)
	return connect.NewResponse(&api.SaveGroupResponse{Group: group}), nil
}

// RenameGroup renames a group.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("RenameGroup request received", "username", sess.Username, "from", req.Msg.From, "to", req.Msg.To)

	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if err := s.accounts.RenameGroup(ctx, sess.Username, req.Msg.From, req.Msg.To); err != nil {
		s.logger.Warn("RenameGroup failed", "username", sess.Username, "error", err)
		return nil, accountError(err)
	}

	group, err := s.reload(ctx, sess, req.Msg.To)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RenameGroupResponse{Group: group}), nil
}

// DeleteGroup deletes a group. Deleting a missing group succeeds.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("DeleteGroup request received", "username", sess.Username, "name", req.Msg.Name)

	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if err := s.accounts.DeleteGroup(ctx, sess.Username, req.Msg.Name); err != nil {
		s.logger.Error("DeleteGroup failed", "username", sess.Username, "error", err)
		return nil, accountError(err)
	}

	if _, err := s.reload(ctx, sess, ""); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// reload refreshes the session from the store and returns the named group.
func (s *GroupService) reload(ctx context.Context, sess *session.Session, name string) (api.Group, error) {
	user, err := s.accounts.Get(ctx, sess.Username)
	if err != nil {
		return api.Group{}, accountError(err)
	}
	sess.Refresh(user)

	name = strings.TrimSpace(name)
	for _, g := range toAPIGroups(user.Groups) {
		if g.Name == name {
			return g, nil
		}
	}
	return api.Group{}, nil
}
