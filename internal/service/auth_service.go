package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/metrics"
	"github.com/mmynk/splitlah/internal/middleware"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	accounts   auth.Authenticator
	sessions   *session.Manager
	jwtManager *auth.JWTManager
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewAuthService creates a new authentication service. m may be nil.
func NewAuthService(accounts auth.Authenticator, sessions *session.Manager, jwtManager *auth.JWTManager, logger *slog.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		accounts:   accounts,
		sessions:   sessions,
		jwtManager: jwtManager,
		logger:     logger,
		metrics:    m,
	}
}

// Signup creates a new user account.
func (s *AuthService) Signup(ctx context.Context, req *connect.Request[api.SignupRequest]) (*connect.Response[api.SignupResponse], error) {
	s.logger.Info("Signup request", "username", req.Msg.Username)

	if err := checkRequest(req.Msg); err != nil {
		s.countSignup("invalid")
		return nil, err
	}

	if err := s.accounts.Create(ctx, req.Msg.Username, req.Msg.Password); err != nil {
		switch {
		case errors.Is(err, account.ErrAlreadyExists):
			s.logger.Warn("Signup rejected", "username", req.Msg.Username, "error", err)
			s.countSignup("exists")
		case errors.Is(err, auth.ErrPasswordTooLong), errors.Is(err, auth.ErrWeakPassword):
			s.logger.Warn("Signup rejected", "username", req.Msg.Username, "error", err)
			s.countSignup("invalid")
		default:
			s.logger.Error("Signup failed", "username", req.Msg.Username, "error", err)
			s.countSignup("error")
		}
		return nil, accountError(err)
	}

	user, err := s.accounts.Get(ctx, req.Msg.Username)
	if err != nil {
		return nil, accountError(err)
	}

	s.countSignup("ok")
	s.logger.Info("User registered successfully", "username", user.Username)
	return connect.NewResponse(&api.SignupResponse{User: toAPIUser(user)}), nil
}

// Login authenticates a user, opens a session and returns a token for it.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	username, err := s.accounts.Verify(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		s.countLogin("failed")
		return nil, accountError(err)
	}

	user, err := s.accounts.Get(ctx, username)
	if err != nil {
		return nil, accountError(err)
	}

	sess := s.sessions.Create(user)
	token, err := s.jwtManager.Generate(user.Username, sess.ID)
	if err != nil {
		s.sessions.End(sess.ID)
		s.logger.Error("Failed to generate token", "username", user.Username, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.countLogin("ok")
	s.logger.Info("User logged in successfully", "username", user.Username, "session_id", sess.ID)
	return connect.NewResponse(&api.LoginResponse{
		User:      toAPIUser(user),
		Token:     token,
		SessionID: sess.ID,
	}), nil
}

// Logout ends the caller's session. The token stops working immediately
// because every request looks its session up.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	s.sessions.End(id)
	s.logger.Info("User logged out", "username", middleware.GetUsername(ctx), "session_id", id)
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the authenticated user's account and refreshes the
// session from it.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetCurrentUser request", "username", sess.Username)

	user, err := s.accounts.Get(ctx, sess.Username)
	if err != nil {
		s.logger.Error("GetCurrentUser failed", "username", sess.Username, "error", err)
		return nil, accountError(err)
	}
	sess.Refresh(user)

	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

func (s *AuthService) countSignup(result string) {
	if s.metrics != nil {
		s.metrics.Signups.WithLabelValues(result).Inc()
	}
}

func (s *AuthService) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(result).Inc()
	}
}
