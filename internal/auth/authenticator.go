package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/landscape-lab/internal/metrics"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
)

// CredentialStore is the persistence the authenticator needs. repo.UserRepo implements it.
// GetByUsername returns repo.ErrNotFound for unknown users; Create returns
// repo.ErrConflict when the username or email is taken.
type CredentialStore interface {
	Create(ctx context.Context, username, email, passwordHash string, isAdmin bool) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator ties the hasher, token manager and policy to the credential store.
type Authenticator struct {
	store  CredentialStore
	hasher *PasswordHasher
	tokens *TokenManager
	logger *slog.Logger

	// dummyHash is compared against when the user does not exist so that an
	// unknown username costs the same as a wrong password.
	dummyHash string
}

func NewAuthenticator(store CredentialStore, hasher *PasswordHasher, tokens *TokenManager, logger *slog.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := hasher.Hash("landlab-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Authenticator{store: store, hasher: hasher, tokens: tokens, logger: logger, dummyHash: dummy}, nil
}

func (a *Authenticator) Hasher() *PasswordHasher { return a.hasher }
func (a *Authenticator) Tokens() *TokenManager   { return a.tokens }

// Register hashes password and stores a new user. A taken username or email
// yields repo.ErrConflict.
func (a *Authenticator) Register(ctx context.Context, username, email, password string, isAdmin bool) (*models.User, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := a.store.Create(ctx, username, email, hash, isAdmin)
	if err != nil {
		return nil, err
	}
	a.logger.Info("user registered", "user_id", u.ID, "username", u.Username, "admin", isAdmin)
	return u, nil
}

// Authenticate returns the active user matching username and password.
// Every failure is ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := a.store.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		a.hasher.Verify(password, a.dummyHash)
		a.fail("unknown_user", username)
		return nil, unauthenticated(ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !a.hasher.Verify(password, u.PasswordHash) {
		a.fail("invalid_credentials", username)
		return nil, unauthenticated(ErrInvalidCredentials)
	}
	if !u.IsActive {
		a.fail("inactive", username)
		return nil, unauthenticated(ErrInvalidCredentials)
	}
	return u, nil
}

// IssueTokenFor signs a bearer token for u.
func (a *Authenticator) IssueTokenFor(u *models.User) (string, time.Time, error) {
	return a.tokens.IssueForUser(u.Username, u.ID)
}

// VerifyRequestToken resolves a bearer token to its active user. The user
// found by the subject must carry the id the token was issued for; a
// username freed by a rename and registered again does not inherit old tokens.
func (a *Authenticator) VerifyRequestToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.VerifyClaims(token)
	if err != nil {
		a.fail(Reason(err), "")
		return nil, err
	}
	u, err := a.store.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		a.fail("unknown_user", claims.Subject)
		return nil, unauthenticated(ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	if claims.UserID == 0 || claims.UserID != u.ID {
		a.fail("subject_mismatch", claims.Subject)
		return nil, unauthenticated(ErrMalformed)
	}
	if !u.IsActive {
		a.fail("inactive", claims.Subject)
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// Authorize applies the declared rule for op to u and the target owner.
func (a *Authenticator) Authorize(u *models.User, op Operation, ownerID int) error {
	err := Check(u, op, ownerID)
	if errors.Is(err, ErrForbidden) {
		a.logger.Info("operation denied", "user_id", u.ID, "operation", string(op), "owner_id", ownerID)
	}
	return err
}

func (a *Authenticator) fail(reason, username string) {
	metrics.IncAuthFailure(reason)
	if username != "" {
		a.logger.Warn("authentication failed", "reason", reason, "username", username)
		return
	}
	a.logger.Warn("authentication failed", "reason", reason)
}
