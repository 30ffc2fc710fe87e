package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"go.uber.org/zap"
)

type State string

const (
	StateAnonymous  State = "ANONYMOUS"
	StateRestoring  State = "RESTORING"
	StateIdentified State = "IDENTIFIED"
	StateExpiring   State = "EXPIRING"
)

// adminGroup is the group-membership marker that grants the admin role.
const adminGroup = "admin"

// SignUpRequest mirrors the attributes the identity provider accepts at
// registration.
type SignUpRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// IdentityProvider is the hosted identity service. All methods are remote
// calls; the session never interprets tokens beyond what TokenStore decodes.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (TokenSet, error)
	Revoke(ctx context.Context, refreshToken string) error
	SignUp(ctx context.Context, req SignUpRequest) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	ResendConfirmationCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, accessToken, current, updated string) error
	UpdateAttributes(ctx context.Context, accessToken string, attrs map[string]string) error
}

// Session owns the principal lifecycle: restore, sign-in, refresh and
// sign-out. Every other component reads the already-resolved principal and
// never touches tokens or group claims.
type Session struct {
	mu            sync.Mutex
	state         State
	principal     domain.Principal
	tokens        *TokenStore
	idp           IdentityProvider
	logger        *zap.Logger
	refreshMargin time.Duration
	revokeTimeout time.Duration
	subscribers   []func(domain.Principal)
}

func NewSession(tokens *TokenStore, idp IdentityProvider, logger *zap.Logger) *Session {
	return &Session{
		state:         StateAnonymous,
		principal:     domain.Anonymous(),
		tokens:        tokens,
		idp:           idp,
		logger:        logger,
		refreshMargin: 5 * time.Minute,
		revokeTimeout: 5 * time.Second,
	}
}

// SetRefreshMargin overrides the default expiry margin used by
// RefreshIfNeeded.
func (s *Session) SetRefreshMargin(margin time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if margin > 0 {
		s.refreshMargin = margin
	}
}

// Subscribe registers a callback invoked after every principal change.
// Callbacks run outside the session lock.
func (s *Session) Subscribe(fn func(domain.Principal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Session) Principal() domain.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restore recovers a session from stored tokens. Failure of any kind is a
// normal anonymous outcome, not an error; restore never fails its caller.
func (s *Session) Restore(ctx context.Context) domain.Principal {
	s.setState(StateRestoring)

	if err := s.tokens.Restore(ctx); err != nil {
		s.logger.Info("session restore: no usable stored session", zap.Error(err))
		return s.toAnonymous(ctx, false)
	}

	claims, ok := s.tokens.Claims()
	if !ok {
		return s.toAnonymous(ctx, false)
	}

	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(time.Now()) {
		refresh := s.tokens.RefreshToken()
		if refresh == "" {
			return s.toAnonymous(ctx, true)
		}
		set, err := s.idp.Refresh(ctx, refresh)
		if err != nil {
			s.logger.Info("session restore: refresh failed", zap.Error(err))
			return s.toAnonymous(ctx, true)
		}
		if err := s.tokens.Set(ctx, set); err != nil {
			s.logger.Warn("session restore: storing refreshed tokens failed", zap.Error(err))
			return s.toAnonymous(ctx, true)
		}
		claims, _ = s.tokens.Claims()
	}

	return s.toIdentified(claims)
}

// SignIn exchanges credentials for tokens. Any provider failure leaves the
// session anonymous and reports ErrInvalidCredentials.
func (s *Session) SignIn(ctx context.Context, email, password string) (domain.Principal, error) {
	set, err := s.idp.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign in rejected", zap.String("email", email), zap.Error(err))
		s.toAnonymous(ctx, false)
		return domain.Anonymous(), fmt.Errorf("sign in: %w", ErrInvalidCredentials)
	}
	if err := s.tokens.Set(ctx, set); err != nil {
		s.toAnonymous(ctx, true)
		return domain.Anonymous(), fmt.Errorf("sign in: %w", err)
	}
	claims, _ := s.tokens.Claims()
	return s.toIdentified(claims), nil
}

// SignOut clears local session state synchronously; remote revocation is
// best-effort and its failure is swallowed.
func (s *Session) SignOut(ctx context.Context) {
	refresh := s.tokens.RefreshToken()
	s.toAnonymous(ctx, true)

	if refresh == "" {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.revokeTimeout)
	defer cancel()
	if err := s.idp.Revoke(rctx, refresh); err != nil {
		s.logger.Info("sign out: remote revocation failed", zap.Error(err))
	}
}

// RefreshIfNeeded refreshes the token triple when it is inside the expiry
// margin. A failed refresh forces re-login instead of letting downstream
// calls fail with stale credentials.
func (s *Session) RefreshIfNeeded(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdentified || !s.tokens.ExpiresWithin(s.refreshMargin) {
		s.mu.Unlock()
		return nil
	}
	s.state = StateExpiring
	s.mu.Unlock()

	set, err := s.idp.Refresh(ctx, s.tokens.RefreshToken())
	if err != nil {
		s.logger.Warn("token refresh failed, signing out", zap.Error(err))
		s.toAnonymous(ctx, true)
		return fmt.Errorf("refresh: %w", ErrSessionExpired)
	}
	if err := s.tokens.Set(ctx, set); err != nil {
		s.toAnonymous(ctx, true)
		return fmt.Errorf("refresh: %w", ErrSessionExpired)
	}

	claims, _ := s.tokens.Claims()
	s.toIdentified(claims)
	return nil
}

// UpdateProfile pushes attribute changes to the identity provider, making
// sure the access token is fresh first.
func (s *Session) UpdateProfile(ctx context.Context, attrs map[string]string) error {
	if err := s.RefreshIfNeeded(ctx); err != nil {
		return err
	}
	if err := s.idp.UpdateAttributes(ctx, s.tokens.AccessToken(), attrs); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SignUp registers a new account. The account is unusable until the
// emailed code is confirmed.
func (s *Session) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := s.idp.SignUp(ctx, req); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

func (s *Session) ConfirmSignUp(ctx context.Context, email, code string) error {
	if err := s.idp.ConfirmSignUp(ctx, email, code); err != nil {
		return fmt.Errorf("confirm sign up: %w", err)
	}
	return nil
}

func (s *Session) ResendConfirmationCode(ctx context.Context, email string) error {
	if err := s.idp.ResendConfirmationCode(ctx, email); err != nil {
		return fmt.Errorf("resend confirmation code: %w", err)
	}
	return nil
}

func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	if err := s.idp.ForgotPassword(ctx, email); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (s *Session) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	if err := s.idp.ConfirmForgotPassword(ctx, email, code, newPassword); err != nil {
		return fmt.Errorf("confirm forgot password: %w", err)
	}
	return nil
}

// ChangePassword requires the current password; the provider enforces it.
func (s *Session) ChangePassword(ctx context.Context, current, updated string) error {
	if err := s.RefreshIfNeeded(ctx); err != nil {
		return err
	}
	if err := s.idp.ChangePassword(ctx, s.tokens.AccessToken(), current, updated); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) toIdentified(claims Claims) domain.Principal {
	principal := principalFromClaims(claims)

	s.mu.Lock()
	s.state = StateIdentified
	changed := s.principal != principal
	s.principal = principal
	subs := append([]func(domain.Principal){}, s.subscribers...)
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(principal)
		}
	}
	return principal
}

func (s *Session) toAnonymous(ctx context.Context, clearTokens bool) domain.Principal {
	if clearTokens {
		if err := s.tokens.Clear(ctx); err != nil {
			s.logger.Warn("clearing tokens failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.state = StateAnonymous
	changed := s.principal != domain.Anonymous()
	s.principal = domain.Anonymous()
	subs := append([]func(domain.Principal){}, s.subscribers...)
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(domain.Anonymous())
		}
	}
	return domain.Anonymous()
}

// principalFromClaims is the single place role derivation happens; every
// consumer receives an already-resolved role and never re-decodes tokens.
func principalFromClaims(claims Claims) domain.Principal {
	role := domain.RoleCustomer
	for _, g := range claims.Groups {
		if strings.EqualFold(g, adminGroup) {
			role = domain.RoleAdmin
			break
		}
	}
	return domain.Principal{
		Kind:      domain.PrincipalIdentified,
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      role,
	}
}
