package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
)

var ErrInvalidToken = errors.New("token is not a usable bearer credential")

// SocketReleaser is the part of ws.Manager logout needs.
type SocketReleaser interface {
	Release()
}

type AuthService struct {
	tokens        repository.TokenStore
	notifications repository.NotificationStore
	sockets       SocketReleaser
	clock         clockwork.Clock
	logger        *zap.Logger
}

func NewAuthService(tokens repository.TokenStore, notifications repository.NotificationStore, sockets SocketReleaser, clock clockwork.Clock, logger *zap.Logger) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tokens:        tokens,
		notifications: notifications,
		sockets:       sockets,
		clock:         clock,
		logger:        logger.Named("auth"),
	}
}

// Identity is what the stored credential says about its holder. The
// signature is not checked here; the server does that.
type Identity struct {
	Subject   domain.ID  `json:"sub"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}

// Login stores token as the bearer credential for REST and socket calls.
// JWTs that already expired are refused.
func (s *AuthService) Login(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return nil, ErrInvalidToken
	}

	id, err := s.decode(token)
	if err != nil && !errors.Is(err, ErrInvalidToken) {
		return nil, err
	}
	if id == nil {
		id = &Identity{}
	}

	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("saving credential: %w", err)
	}
	s.logger.Info("credential stored")
	return id, nil
}

// Logout forgets the credential, drops local notifications and closes the
// shared socket. It is the only place the socket is torn down.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.sockets != nil {
		s.sockets.Release()
	}

	var errs []error
	if err := s.tokens.ClearToken(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clearing credential: %w", err))
	}
	if s.notifications != nil {
		if err := s.notifications.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clearing notifications: %w", err))
		}
	}
	s.logger.Info("signed out")
	return errors.Join(errs...)
}

// Identity decodes the stored credential. Opaque tokens yield an Identity
// with only what is known, which is nothing.
func (s *AuthService) Identity(ctx context.Context) (*Identity, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.decode(token)
	if errors.Is(err, ErrInvalidToken) {
		return &Identity{}, nil
	}
	return id, err
}

func (s *AuthService) decode(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}

	id := &Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = domain.ID(sub)
	}
	if id.Subject.IsZero() {
		// Some issuers put the user id under "id" or "userId", sometimes as a number.
		for _, key := range []string{"id", "userId"} {
			if v, ok := claims[key]; ok {
				id.Subject = domain.ID(strings.TrimSuffix(fmt.Sprint(v), ".0"))
				break
			}
		}
	}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		id.Role = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		id.ExpiresAt = &t
		if t.Before(s.clock.Now()) {
			return id, ws.ErrCredentialExpired
		}
	}
	return id, nil
}
