package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/auth"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/logger"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// Global keys shared across users (single storefront installation).
const (
	keyLastRegisteredEmail = "last_registered_email"
	keyBiometricsEnabled   = "biometrics_enabled"
)

// Session is what a successful login hands back: a signed token plus the
// user's persisted collections, lazily loaded so switching accounts always
// re-reads from storage and can never leak the previous user's data.
type Session struct {
	Token    string                  `json:"token"`
	Email    string                  `json:"email"`
	Wishlist []models.WishlistItem   `json:"wishlist"`
	Address  *models.ShippingAddress `json:"address,omitempty"`
}

// SessionStore models accounts and login sessions. Accounts are created
// implicitly on first login (preserving the storefront's "any non-empty
// pair succeeds on first contact" behavior) but once an account exists its
// bcrypt-hashed credential is enforced.
type SessionStore struct {
	kv       kvstore.Store
	wishlist *WishlistStore
	address  *AddressStore
}

func NewSessionStore(kv kvstore.Store, wishlist *WishlistStore, address *AddressStore) *SessionStore {
	return &SessionStore{kv: kv, wishlist: wishlist, address: address}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates (or implicitly registers) the user and returns a
// fresh session. Empty email or password fails with ErrEmptyCredentials
// before anything is touched.
func (s *SessionStore) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return Session{}, ErrEmptyCredentials
	}

	var account models.Account
	found, err := s.kv.Get(ctx, kvstore.UserKey(CollectionAccounts, email), &account)
	if err != nil {
		return Session{}, fmt.Errorf("stores: load account: %w", err)
	}

	if found {
		if !auth.CheckPassword(account.PasswordHash, password) {
			return Session{}, ErrInvalidCredentials
		}
	} else {
		if err := s.createAccount(ctx, email, password); err != nil {
			return Session{}, err
		}
		logger.WithCtx(ctx).Info("account implicitly created on first login", "email", email)
	}

	return s.open(ctx, email)
}

// Signup registers a new account. Unlike Login it refuses an email that is
// already taken — the app shows a proper "account exists" message instead
// of silently logging the user in.
func (s *SessionStore) Signup(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return Session{}, ErrEmptyCredentials
	}

	var existing models.Account
	found, err := s.kv.Get(ctx, kvstore.UserKey(CollectionAccounts, email), &existing)
	if err != nil {
		return Session{}, fmt.Errorf("stores: load account: %w", err)
	}
	if found {
		return Session{}, ErrAccountExists
	}

	if err := s.createAccount(ctx, email, password); err != nil {
		return Session{}, err
	}

	return s.open(ctx, email)
}

// Logout ends the session. Persisted collections are deliberately left
// untouched so logging back in as the same user restores them unchanged;
// the token simply stops being presented by the client.
func (s *SessionStore) Logout(ctx context.Context, email string) {
	logger.WithCtx(ctx).Info("user logged out", "email", normalizeEmail(email))
}

// ResumeBiometric re-establishes a session for the last registered email
// after a successful biometric prompt. Fails with ErrNoSession when
// biometric login was never enabled or no user has logged in yet.
func (s *SessionStore) ResumeBiometric(ctx context.Context) (Session, error) {
	enabled, err := s.Biometrics(ctx)
	if err != nil {
		return Session{}, err
	}
	if !enabled {
		return Session{}, ErrNoSession
	}

	email, found, err := s.LastRegisteredEmail(ctx)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, ErrNoSession
	}

	return s.open(ctx, email)
}

// SetBiometrics stores the biometric-login preference flag.
func (s *SessionStore) SetBiometrics(ctx context.Context, enabled bool) error {
	if err := s.kv.Set(ctx, kvstore.GlobalKey(keyBiometricsEnabled), enabled); err != nil {
		return fmt.Errorf("stores: save biometrics flag: %w", err)
	}
	metrics.RecordMutation("session")
	return nil
}

// Biometrics reads the biometric-login preference flag (false when unset).
func (s *SessionStore) Biometrics(ctx context.Context) (bool, error) {
	var enabled bool
	if _, err := s.kv.Get(ctx, kvstore.GlobalKey(keyBiometricsEnabled), &enabled); err != nil {
		return false, fmt.Errorf("stores: load biometrics flag: %w", err)
	}
	return enabled, nil
}

// LastRegisteredEmail returns the most recent successfully logged-in email.
func (s *SessionStore) LastRegisteredEmail(ctx context.Context) (string, bool, error) {
	var email string
	found, err := s.kv.Get(ctx, kvstore.GlobalKey(keyLastRegisteredEmail), &email)
	if err != nil {
		return "", false, fmt.Errorf("stores: load last registered email: %w", err)
	}
	return email, found, nil
}

// ─── internals ───────────────────────────────────────────────────────────────

func (s *SessionStore) createAccount(ctx context.Context, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("stores: hash password: %w", err)
	}
	account := models.Account{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := s.kv.Set(ctx, kvstore.UserKey(CollectionAccounts, email), account); err != nil {
		return fmt.Errorf("stores: save account: %w", err)
	}
	metrics.RecordMutation(CollectionAccounts)
	return nil
}

// open mints a token and lazily loads the user's persisted collections.
func (s *SessionStore) open(ctx context.Context, email string) (Session, error) {
	token, err := auth.GenerateToken(email)
	if err != nil {
		return Session{}, fmt.Errorf("stores: sign token: %w", err)
	}

	if err := s.kv.Set(ctx, kvstore.GlobalKey(keyLastRegisteredEmail), email); err != nil {
		return Session{}, fmt.Errorf("stores: save last registered email: %w", err)
	}

	wishlist, err := s.wishlist.Items(ctx, email)
	if err != nil {
		return Session{}, err
	}

	session := Session{Token: token, Email: email, Wishlist: wishlist}

	addr, found, err := s.address.Get(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if found {
		session.Address = &addr
	}

	return session, nil
}
