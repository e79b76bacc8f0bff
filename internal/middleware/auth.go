package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UsernameKey is the context key for the authenticated username.
	UsernameKey contextKey = "username"
	// SessionIDKey is the context key for the session ID carried by the token.
	SessionIDKey contextKey = "session_id"
	// SessionKey is the context key for the live *session.Session.
	SessionKey contextKey = "session"
)

// SessionStore resolves session IDs to live sessions.
type SessionStore interface {
	Get(id string) (*session.Session, error)
}

// GetUsername extracts the username from the context.
// Returns empty string if not found.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// GetSession extracts the live session from the context, or nil.
func GetSession(ctx context.Context) *session.Session {
	s, _ := ctx.Value(SessionKey).(*session.Session)
	return s
}

// WithSession returns a context carrying s and its identity.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	ctx = context.WithValue(ctx, UsernameKey, s.Username)
	ctx = context.WithValue(ctx, SessionIDKey, s.ID)
	return context.WithValue(ctx, SessionKey, s)
}

// RequireAuth returns a middleware that validates the bearer token, looks up
// the session it names and adds both to the request context. A token whose
// session has ended (logout, expiry, restart) is rejected.
func RequireAuth(jwtManager *auth.JWTManager, sessions SessionStore) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			s, err := sessions.Get(claims.SessionID)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if !strings.EqualFold(s.Username, claims.Username) {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			return next(WithSession(ctx, s), req)
		}
	}
}

// OptionalAuth returns a middleware that attaches the session when a valid
// token is present, but lets anonymous requests through.
func OptionalAuth(jwtManager *auth.JWTManager, sessions SessionStore) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				// errors are ignored: the request simply stays anonymous
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					if s, err := sessions.Get(claims.SessionID); err == nil {
						ctx = WithSession(ctx, s)
					}
				}
			}
			return next(ctx, req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
