// Package session owns the process-wide authentication state: who is logged
// in, the bearer token they hold, and the transitions between the two.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/credentials"
	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
)

// Notification texts shown after session operations
const (
	msgLoginFailed      = "Login failed"
	msgSignupFailed     = "Signup failed"
	msgLoggedOut        = "Logged out successfully"
	msgProfileUpdated   = "Profile updated successfully"
	msgProfileFailed    = "Failed to update profile"
	msgPasswordUpdated  = "Password updated successfully"
	msgPasswordFailed   = "Failed to update password"
	msgSessionExpired   = "Your session has expired. Please log in again."
	msgLoginRequired    = "Please log in first"
	msgAlreadyLoggedIn  = "Already logged in. Log out first to switch accounts"
	msgSessionNotStored = "Logged in, but the session could not be saved on this device"
)

// API is the part of the survey API the session drives
type API interface {
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*client.AuthResponse, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error)
	UpdatePassword(ctx context.Context, change models.PasswordChange) error
	SetCredentialProvider(fn func() string)
	SetUnauthorizedHandler(fn func(token string))
}

// Store is the single source of truth for the current session.
// Only the operations below mutate it; everything else reads Snapshot.
type Store struct {
	api      API
	creds    credentials.Store
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state State
	token string
	user  *models.UserProfile
	// generation increases on every transition so that responses to calls
	// started before a transition can be recognised and dropped.
	generation uint64

	initOnce    sync.Once
	resolveOnce sync.Once
	ready       chan struct{}
}

// Option configures a Store
type Option func(*Store)

// WithNotifier sets where user-visible notifications go
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the store logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = log
	}
}

// WithClock overrides the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store in the Initializing state and installs its credential
// hooks on api. Call Initialize (or Start) to resolve it.
func New(api API, creds credentials.Store, opts ...Option) *Store {
	s := &Store{
		api:      api,
		creds:    creds,
		notifier: notify.Discard{},
		logger:   zerolog.Nop(),
		now:      time.Now,
		state:    StateInitializing,
		ready:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	api.SetCredentialProvider(s.Token)
	api.SetUnauthorizedHandler(s.expire)

	return s
}

// Start resolves the session in the background
func (s *Store) Start(ctx context.Context) {
	go s.Initialize(ctx)
}

// Ready is closed once the session has left the Initializing state
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the session is resolved or ctx is done
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Session{
		State:   s.state,
		Token:   s.token,
		User:    copyProfile(s.user),
		Loading: s.state == StateInitializing,
	}
}

// Token is the credential provider: the token to attach, or "" for none
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Initialize reads the persisted token and validates it against the API.
// Any validation failure silently leaves the session anonymous. It runs at
// most once; later calls wait for the first to finish.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		s.initialize(ctx)
	})
	<-s.ready
}

func (s *Store) initialize(ctx context.Context) {
	token, err := s.creds.Load()
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to read stored credential")
		}
		s.resolveAnonymous()
		return
	}

	if credentials.Expired(token, s.now()) {
		s.logger.Info().Msg("Stored credential has expired")
		s.discardCredential()
		s.resolveAnonymous()
		return
	}

	// Attach the credential for the validation call and everything after it
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return
	}
	s.token = token
	gen := s.generation
	s.mu.Unlock()

	user, err := s.api.CurrentUser(ctx)
	if err == nil && !validProfile(user) {
		err = ErrIncompleteResponse
	}

	s.mu.Lock()
	if s.generation != gen || s.state != StateInitializing {
		// Logged out (or in) while validating: the response is stale
		s.mu.Unlock()
		s.logger.Debug().Msg("Dropping stale credential validation result")
		return
	}

	if err != nil {
		s.token = ""
		s.user = nil
		s.state = StateAnonymous
		s.generation++
		s.mu.Unlock()

		s.logger.Warn().Err(err).Msg("Stored credential rejected, continuing anonymously")
		s.discardCredential()
		s.markResolved()
		return
	}

	s.user = copyProfile(user)
	s.state = StateAuthenticated
	s.generation++
	s.mu.Unlock()

	s.logger.Info().Str("user_id", user.ID).Msg("Session restored")
	s.markResolved()
}

// resolveAnonymous finishes initialization without a credential
func (s *Store) resolveAnonymous() {
	s.mu.Lock()
	if s.state == StateInitializing {
		s.token = ""
		s.user = nil
		s.state = StateAnonymous
		s.generation++
	}
	s.mu.Unlock()

	s.markResolved()
}

func (s *Store) markResolved() {
	s.resolveOnce.Do(func() {
		close(s.ready)
	})
}

// Login authenticates with email and password. On failure the session is
// left exactly as it was and a *Failure is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.Wait(ctx); err != nil {
		return s.fail("login", msgLoginFailed, err)
	}
	if err := s.requireAnonymous("login"); err != nil {
		return err
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail("login", client.MessageFrom(err, msgLoginFailed), err)
	}
	if resp == nil || resp.Token == "" || !validProfile(&resp.User) {
		return s.fail("login", msgLoginFailed, ErrIncompleteResponse)
	}

	s.establish("login", resp)
	return nil
}

// Signup registers a new account and logs into it, with Login's contract
func (s *Store) Signup(ctx context.Context, name, email, password string) error {
	if err := s.Wait(ctx); err != nil {
		return s.fail("signup", msgSignupFailed, err)
	}
	if err := s.requireAnonymous("signup"); err != nil {
		return err
	}

	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return s.fail("signup", client.MessageFrom(err, msgSignupFailed), err)
	}
	if resp == nil || resp.Token == "" || !validProfile(&resp.User) {
		return s.fail("signup", msgSignupFailed, ErrIncompleteResponse)
	}

	s.establish("signup", resp)
	return nil
}

// establish moves to Authenticated with the credential from resp
func (s *Store) establish(op string, resp *client.AuthResponse) {
	if err := s.creds.Save(resp.Token); err != nil {
		s.logger.Warn().Err(err).Str("op", op).Msg("Failed to persist credential")
		s.notifier.Notify(notify.LevelWarning, msgSessionNotStored)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = copyProfile(&resp.User)
	s.state = StateAuthenticated
	s.generation++
	s.mu.Unlock()

	s.markResolved()
	s.logger.Info().Str("op", op).Str("user_id", resp.User.ID).Msg("User authenticated")
}

// Logout clears the session locally. It never fails.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = StateAnonymous
	s.generation++
	s.mu.Unlock()

	s.markResolved()
	s.discardCredential()

	s.logger.Info().Msg("User logged out")
	s.notifier.Notify(notify.LevelSuccess, msgLoggedOut)
}

// UpdateProfile sends a partial profile; on success the stored profile is
// replaced by the server's copy. On failure it is left unchanged.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	gen, ok := s.authenticatedGeneration()
	if !ok {
		return nil, s.fail("update_profile", msgLoginRequired, ErrNotAuthenticated)
	}

	user, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, s.fail("update_profile", client.MessageFrom(err, msgProfileFailed), err)
	}

	s.mu.Lock()
	if s.generation == gen && s.state == StateAuthenticated {
		s.user = copyProfile(user)
	}
	s.mu.Unlock()

	s.notifier.Notify(notify.LevelSuccess, msgProfileUpdated)
	return copyProfile(user), nil
}

// UpdatePassword changes the password. The stored profile is never touched.
func (s *Store) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	if _, ok := s.authenticatedGeneration(); !ok {
		return s.fail("update_password", msgLoginRequired, ErrNotAuthenticated)
	}

	change := models.PasswordChange{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := s.api.UpdatePassword(ctx, change); err != nil {
		return s.fail("update_password", client.MessageFrom(err, msgPasswordFailed), err)
	}

	s.notifier.Notify(notify.LevelSuccess, msgPasswordUpdated)
	return nil
}

// Revalidate re-checks the credential of an authenticated session. A 401
// expires the session through the unauthorized hook; transport errors keep it.
func (s *Store) Revalidate(ctx context.Context) error {
	gen, ok := s.authenticatedGeneration()
	if !ok {
		return nil
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if !client.IsUnauthorized(err) {
			s.logger.Warn().Err(err).Msg("Session revalidation failed, keeping session")
		}
		return err
	}
	if !validProfile(user) {
		s.logger.Warn().Msg("Session revalidation returned no user, keeping session")
		return ErrIncompleteResponse
	}

	s.mu.Lock()
	if s.generation == gen && s.state == StateAuthenticated {
		s.user = copyProfile(user)
	}
	s.mu.Unlock()

	return nil
}

// expire is the unauthorized hook: the API rejected token on a protected call
func (s *Store) expire(token string) {
	s.mu.Lock()
	if s.state != StateAuthenticated || s.token != token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.state = StateAnonymous
	s.generation++
	s.mu.Unlock()

	s.discardCredential()

	s.logger.Warn().Msg("Credential rejected by API, session expired")
	s.notifier.Notify(notify.LevelWarning, msgSessionExpired)
}

// requireAnonymous enforces that Login and Signup only start from Anonymous
func (s *Store) requireAnonymous(op string) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == StateAuthenticated {
		return s.fail(op, msgAlreadyLoggedIn, ErrAlreadyAuthenticated)
	}
	return nil
}

func (s *Store) authenticatedGeneration() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, s.state == StateAuthenticated
}

func (s *Store) discardCredential() {
	if err := s.creds.Delete(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete stored credential")
	}
}

func (s *Store) fail(op, message string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Msg("Session operation failed")
	s.notifier.Notify(notify.LevelError, message)
	return &Failure{Op: op, Message: message, Err: err}
}

// validProfile reports whether p identifies a user
func validProfile(p *models.UserProfile) bool {
	return p != nil && p.ID != ""
}

func copyProfile(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Notifications != nil {
		v := *p.Notifications
		cp.Notifications = &v
	}
	return &cp
}
