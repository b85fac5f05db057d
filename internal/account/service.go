package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/knostijr/BE-coderr/internal/permission"
)

// ErrInvalidCredentials is returned when the username/password pair does not
// match an existing user. The message never reveals which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a bearer token cannot be parsed or verified.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued at registration and login.
type Claims struct {
	UserID   uuid.UUID       `json:"user_id"`
	Username string          `json:"username"`
	Role     permission.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service provides registration, login and token operations.
type Service struct {
	repo       Repository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates a new account Service.
func NewService(repo Repository, secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user with a hashed password and returns it together
// with a signed token. The role must be customer or business; staff accounts
// are provisioned out of band.
func (s *Service) Register(ctx context.Context, username, email, password string, role permission.Role) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Login resolves a username/password pair to the user and a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// IssueToken signs an HS256 token carrying the user's id, username and role.
func (s *Service) IssueToken(u *User) (string, error) {
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token and returns the principal it carries.
func (s *Service) ParseToken(tokenStr string) (permission.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return permission.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return permission.Principal{}, ErrInvalidToken
	}

	return permission.Principal{
		ID:            claims.UserID,
		Role:          claims.Role,
		Authenticated: true,
	}, nil
}
