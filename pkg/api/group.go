package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "splitlah.v1.GroupService"

// Procedure paths, used for routing and in interceptors.
const (
	GroupServiceListGroupsProcedure  = "/splitlah.v1.GroupService/ListGroups"
	GroupServiceSaveGroupProcedure   = "/splitlah.v1.GroupService/SaveGroup"
	GroupServiceRenameGroupProcedure = "/splitlah.v1.GroupService/RenameGroup"
	GroupServiceDeleteGroupProcedure = "/splitlah.v1.GroupService/DeleteGroup"
)

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
	// Limit is the number of groups the plan allows; zero for unlimited.
	Limit int `json:"limit"`
}

type SaveGroupRequest struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Members []string `json:"members" validate:"required,min=1"`
}

type SaveGroupResponse struct {
	Group Group `json:"group"`
}

type RenameGroupRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,max=100"`
}

type RenameGroupResponse struct {
	Group Group `json:"group"`
}

type DeleteGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

type DeleteGroupResponse struct{}

// GroupServiceHandler is implemented by the server.
// Every method needs a bearer token.
type GroupServiceHandler interface {
	// ListGroups returns the caller's saved groups sorted by name.
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	// SaveGroup creates or overwrites a group.
	SaveGroup(context.Context, *connect.Request[SaveGroupRequest]) (*connect.Response[SaveGroupResponse], error)
	// RenameGroup moves a group to a new name.
	RenameGroup(context.Context, *connect.Request[RenameGroupRequest]) (*connect.Response[RenameGroupResponse], error)
	// DeleteGroup removes a group if it exists.
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler serving every GroupService procedure.
// It returns the path prefix to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	options := handlerOptions(opts)
	return mount(GroupServiceName, map[string]http.Handler{
		GroupServiceListGroupsProcedure:  connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, options),
		GroupServiceSaveGroupProcedure:   connect.NewUnaryHandler(GroupServiceSaveGroupProcedure, svc.SaveGroup, options),
		GroupServiceRenameGroupProcedure: connect.NewUnaryHandler(GroupServiceRenameGroupProcedure, svc.RenameGroup, options),
		GroupServiceDeleteGroupProcedure: connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, options),
	})
}

// GroupServiceClient calls a remote GroupService.
type GroupServiceClient interface {
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	SaveGroup(context.Context, *connect.Request[SaveGroupRequest]) (*connect.Response[SaveGroupResponse], error)
	RenameGroup(context.Context, *connect.Request[RenameGroupRequest]) (*connect.Response[RenameGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

// NewGroupServiceClient creates a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	options := clientOptions(opts)
	return &groupServiceClient{
		listGroups:  connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, options),
		saveGroup:   connect.NewClient[SaveGroupRequest, SaveGroupResponse](httpClient, baseURL+GroupServiceSaveGroupProcedure, options),
		renameGroup: connect.NewClient[RenameGroupRequest, RenameGroupResponse](httpClient, baseURL+GroupServiceRenameGroupProcedure, options),
		deleteGroup: connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, options),
	}
}

type groupServiceClient struct {
	listGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
	saveGroup   *connect.Client[SaveGroupRequest, SaveGroupResponse]
	renameGroup *connect.Client[RenameGroupRequest, RenameGroupResponse]
	deleteGroup *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) SaveGroup(ctx context.Context, req *connect.Request[SaveGroupRequest]) (*connect.Response[SaveGroupResponse], error) {
	return c.saveGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RenameGroup(ctx context.Context, req *connect.Request[RenameGroupRequest]) (*connect.Response[RenameGroupResponse], error) {
	return c.renameGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from every method.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return nil, unimplemented(GroupServiceListGroupsProcedure)
}

func (UnimplementedGroupServiceHandler) SaveGroup(context.Context, *connect.Request[SaveGroupRequest]) (*connect.Response[SaveGroupResponse], error) {
	return nil, unimplemented(GroupServiceSaveGroupProcedure)
}

func (UnimplementedGroupServiceHandler) RenameGroup(context.Context, *connect.Request[RenameGroupRequest]) (*connect.Response[RenameGroupResponse], error) {
	return nil, unimplemented(GroupServiceRenameGroupProcedure)
}

func (UnimplementedGroupServiceHandler) DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return nil, unimplemented(GroupServiceDeleteGroupProcedure)
}
