package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kanak-sys/ToDo-App/internal/auth"
	"github.com/kanak-sys/ToDo-App/internal/store"
	"github.com/kanak-sys/ToDo-App/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer mints and verifies session tokens.
type TokenIssuer interface {
	Issue(identity types.Identity) (string, error)
	Verify(token string) (types.Identity, error)
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

// AuthService turns credentials into a verified identity and back.
type AuthService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *slog.Logger

	// dummyHash is compared against on unknown emails so both login
	// failures cost one bcrypt run.
	dummyHash string
}

func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	s := &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
	if hash, err := hasher.Hash("no-such-user"); err == nil {
		s.dummyHash = hash
	}
	return s
}

// Signup registers a new user. An existing email or username, whichever
// collides, yields ErrConflict.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return AuthResult{}, validation("username, email and password are required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return AuthResult{}, validation("password must be at most 72 bytes")
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return AuthResult{}, internal(err)
	}
	if exists {
		return AuthResult{}, ErrConflict
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, internal(err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost the race against a concurrent signup for the same identity.
		if errors.Is(err, store.ErrConflict) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, internal(err)
	}

	s.log.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return s.result(user)
}

// Login checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, internal(err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.result(user)
}

// VerifyToken returns the identity embedded in token. It does not consult
// the store.
func (s *AuthService) VerifyToken(token string) (types.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return types.Identity{}, &Error{Kind: KindUnauthorized, Message: ErrUnauthorized.Message, Err: err}
	}
	return identity, nil
}

// IssueToken mints a session token for user.
func (s *AuthService) IssueToken(user types.User) (string, error) {
	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return "", internal(err)
	}
	return token, nil
}

func (s *AuthService) result(user types.User) (AuthResult, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	user.PasswordHash = ""
	return AuthResult{User: user, Token: token}, nil
}

var _ TokenIssuer = (*auth.TokenManager)(nil)
var _ PasswordHasher = auth.Hasher{}
