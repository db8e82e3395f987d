package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/atelier/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong username or password
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator checks the single operator account and hands out tokens
type Authenticator struct {
	username     string
	passwordHash []byte
	tokens       *JWTService
	revoked      *RevocationList
	logger       *zap.Logger
}

// NewAuthenticator creates an authenticator for the configured operator
func NewAuthenticator(cfg config.AuthConfig, tokens *JWTService, revoked *RevocationList, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		username:     cfg.OperatorUsername,
		passwordHash: []byte(cfg.OperatorPasswordHash),
		tokens:       tokens,
		revoked:      revoked,
		logger:       logger,
	}
}

// Login verifies the password against the bcrypt hash and issues a token
func (a *Authenticator) Login(_ context.Context, username, password string) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil || len(a.passwordHash) == 0 {
		a.logger.Warn("Login rejected", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(username)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Operator logged in", zap.String("username", username))
	return token, nil
}

// Authenticate validates a bearer token and rejects revoked ones
func (a *Authenticator) Authenticate(tokenString string) (*Claims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if a.revoked != nil && a.revoked.IsRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway
func (a *Authenticator) Logout(claims *Claims) {
	if a.revoked == nil || claims == nil {
		return
	}
	a.revoked.Revoke(claims.ID, claims.ExpiresAtTime())
}

// HashPassword returns the bcrypt hash to put in auth.operator_password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RevocationList remembers logged-out token ids until they expire
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewRevocationList creates an empty revocation list
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke marks jti revoked until expiresAt
func (r *RevocationList) Revoke(jti string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.entries[jti] = expiresAt
}

// IsRevoked reports whether jti was revoked and has not expired yet
func (r *RevocationList) IsRevoked(jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.entries[jti]
	return ok && r.now().Before(exp)
}

// Len returns the number of tracked ids
func (r *RevocationList) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *RevocationList) prune() {
	now := r.now()
	for jti, exp := range r.entries {
		if !now.Before(exp) {
			delete(r.entries, jti)
		}
	}
}
