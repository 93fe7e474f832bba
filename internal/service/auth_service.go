package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionEnded       = errors.New("session ended")
)

const (
	unknownUserName     = "Unknown User"
	friendCodeAttempts  = 5
	friendCodeSpace     = 100000
	friendCodeFormatStr = "%05d"
)

// Claims extends JWT standard claims with app-specific fields.
// RegisteredClaims.ID (jti) doubles as the session id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionID returns the id of the session the token belongs to.
func (c *Claims) SessionID() string {
	return c.ID
}

// AuthService handles sign-up, sign-in, JWT issuing and session lifecycle.
type AuthService struct {
	cfg      *config.Config
	users    UserStore
	sessions SessionStore
	alerts   *alert.Registry
	log      zerolog.Logger

	newFriendCode func() (string, error)
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users UserStore, sessions SessionStore, alerts *alert.Registry, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:           cfg,
		users:         users,
		sessions:      sessions,
		alerts:        alerts,
		log:           log.With().Str("component", "auth_service").Logger(),
		newFriendCode: randomFriendCode,
	}
}

// SignUp creates an account with a fresh friend code.
func (s *AuthService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        normalizeEmail(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
	}

	for attempt := 1; ; attempt++ {
		code, err := s.newFriendCode()
		if err != nil {
			return nil, fmt.Errorf("generate friend code: %w", err)
		}
		u.FriendCode = code

		err = s.users.Create(ctx, u)
		switch {
		case err == nil:
			s.log.Info().Str("user_id", u.ID.String()).Msg("User signed up")
			return u, nil
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateFriendCode) && attempt < friendCodeAttempts:
			s.log.Debug().Str("code", code).Int("attempt", attempt).Msg("Friend code collision, retrying")
		default:
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
}

// SignIn checks email and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GenerateToken creates a JWT for u and registers its session.
func (s *AuthService) GenerateToken(ctx context.Context, u *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: u.ID.String(),
		Email:  u.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, claims.ID, claims.UserID, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	s.alerts.Open(claims.ID, claims.ExpiresAt.Time)
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, errors.New("invalid user id claim")
	}
	return claims, nil
}

// ValidateSession checks that the token's session has not been signed out.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	userID, err := s.sessions.UserID(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionEnded
		}
		return fmt.Errorf("check session: %w", err)
	}
	if userID != claims.UserID {
		return ErrSessionEnded
	}
	// Zone memory outlives a restart only as long as the token does.
	if claims.ExpiresAt != nil {
		s.alerts.Open(claims.SessionID(), claims.ExpiresAt.Time)
	}
	return nil
}

// SignOut ends the session and discards its zone memory.
func (s *AuthService) SignOut(ctx context.Context, claims *Claims) error {
	if err := s.sessions.Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.alerts.Drop(claims.SessionID())
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomFriendCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(friendCodeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(friendCodeFormatStr, n.Int64()), nil
}
