package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "splitlah.v1.AuthService"

// Procedure paths, used for routing and in interceptors.
const (
	AuthServiceSignupProcedure         = "/splitlah.v1.AuthService/Signup"
	AuthServiceLoginProcedure          = "/splitlah.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/splitlah.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/splitlah.v1.AuthService/GetCurrentUser"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	// bcrypt ignores bytes past 72
	Password string `json:"password" validate:"required,max=72"`
}

type SignupResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// AuthServiceHandler is implemented by the server.
// Signup and Login are public; the rest need a bearer token.
type AuthServiceHandler interface {
	// Signup creates an account on the Basic monthly plan.
	Signup(context.Context, *connect.Request[SignupRequest]) (*connect.Response[SignupResponse], error)
	// Login verifies credentials and opens a session.
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	// Logout ends the caller's session.
	Logout(context.Context, *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error)
	// GetCurrentUser returns the caller's account.
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler serving every AuthService procedure.
// It returns the path prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	options := handlerOptions(opts)
	return mount(AuthServiceName, map[string]http.Handler{
		AuthServiceSignupProcedure:         connect.NewUnaryHandler(AuthServiceSignupProcedure, svc.Signup, options),
		AuthServiceLoginProcedure:          connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, options),
		AuthServiceLogoutProcedure:         connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, options),
		AuthServiceGetCurrentUserProcedure: connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, options),
	})
}

// AuthServiceClient calls a remote AuthService.
type AuthServiceClient interface {
	Signup(context.Context, *connect.Request[SignupRequest]) (*connect.Response[SignupResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Logout(context.Context, *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceClient creates a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	options := clientOptions(opts)
	return &authServiceClient{
		signup:         connect.NewClient[SignupRequest, SignupResponse](httpClient, baseURL+AuthServiceSignupProcedure, options),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, options),
		logout:         connect.NewClient[LogoutRequest, LogoutResponse](httpClient, baseURL+AuthServiceLogoutProcedure, options),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, options),
	}
}

type authServiceClient struct {
	signup         *connect.Client[SignupRequest, SignupResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	logout         *connect.Client[LogoutRequest, LogoutResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

func (c *authServiceClient) Signup(ctx context.Context, req *connect.Request[SignupRequest]) (*connect.Response[SignupResponse], error) {
	return c.signup.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from every method.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) Signup(context.Context, *connect.Request[SignupRequest]) (*connect.Response[SignupResponse], error) {
	return nil, unimplemented(AuthServiceSignupProcedure)
}

func (UnimplementedAuthServiceHandler) Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return nil, unimplemented(AuthServiceLoginProcedure)
}

func (UnimplementedAuthServiceHandler) Logout(context.Context, *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	return nil, unimplemented(AuthServiceLogoutProcedure)
}

func (UnimplementedAuthServiceHandler) GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return nil, unimplemented(AuthServiceGetCurrentUserProcedure)
}
