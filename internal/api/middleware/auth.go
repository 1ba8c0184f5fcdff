// Package middleware holds the gin middleware chain: authentication, role
// gates, CORS, panic recovery and request logging.
package middleware

import (
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	userKey     = "user"

	msgNoToken       = "Access denied. No token provided."
	msgInvalidToken  = "Invalid token."
	msgUserNotFound  = "User not found."
	msgNotAuthorized = "Not authorized to access this route."
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrUserNotFound = errors.New("token subject no longer exists")
)

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator verifies bearer tokens and loads the caller from the store.
type Authenticator struct {
	Tokens *auth.TokenManager
	Users  UserLookup
	Logger *zap.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *auth.TokenManager, users UserLookup, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{Tokens: tokens, Users: users, Logger: logger}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Resolve verifies a token and reloads its subject. The stored role is
// authoritative, not the one in the claim.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims, err := a.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := a.Users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return a.handle(func(c *gin.Context) string { return BearerToken(c.Request) }, false)
}

// OptionalAuth attaches the caller when a token is sent and lets anonymous
// requests through. A token that is sent but invalid is still rejected.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return a.handle(func(c *gin.Context) string { return BearerToken(c.Request) }, true)
}

// RequireAuthOrQuery is RequireAuth that also accepts ?access_token=, for
// WebSocket clients that cannot set headers.
func (a *Authenticator) RequireAuthOrQuery() gin.HandlerFunc {
	return a.handle(func(c *gin.Context) string {
		if t := BearerToken(c.Request); t != "" {
			return t
		}
		return c.Query("access_token")
	}, false)
}

func (a *Authenticator) handle(extract func(*gin.Context) string, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extract(c)
		if token == "" && optional {
			c.Next()
			return
		}

		user, err := a.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoToken):
			abort(c, http.StatusUnauthorized, msgNoToken)
			return
		case errors.Is(err, ErrUserNotFound):
			abort(c, http.StatusUnauthorized, msgUserNotFound)
			return
		case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenSignature),
			errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
			a.Logger.Debug("rejected token", zap.Error(err))
			abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		default:
			a.Logger.Error("failed to load token subject", zap.Error(err))
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		identity := auth.Identity{ID: user.ID, Role: user.Role}
		c.Set(identityKey, identity)
		c.Set(userKey, user)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, msgNoToken)
			return
		}
		if !identity.HasRole(roles...) {
			abort(c, http.StatusForbidden, msgNotAuthorized)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the caller attached by the auth middleware.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// UserFrom returns the stored user loaded by the auth middleware.
func UserFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
