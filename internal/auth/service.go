package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/facebook"
	"github.com/tazhibayda/identity-service/internal/repo"
	"github.com/tazhibayda/identity-service/internal/security"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ProviderVerifier is the slice of the identity provider the
// orchestrator consumes.
type ProviderVerifier interface {
	VerifyToken(ctx context.Context, userToken string) (string, error)
	FetchProfile(ctx context.Context, externalID, userToken string) (facebook.Profile, error)
}

// Service is the authentication orchestrator. It holds no per-request
// state; everything lives in the store, so one instance serves any
// number of concurrent requests.
type Service struct {
	Store     repo.UserStore
	Provider  ProviderVerifier
	JWTSecret string
}

func New(store repo.UserStore, provider ProviderVerifier, jwtSecret string) *Service {
	return &Service{Store: store, Provider: provider, JWTSecret: jwtSecret}
}

// Session is returned by the local-auth flows.
type Session struct {
	ID    string
	Name  string
	Email string
	Token string
}

// ExternalSession is returned by the provider login flow.
type ExternalSession struct {
	ID         string
	ExternalID string
	Name       string
	Email      string
	Token      string
}

const placeholderToken = "temp"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local account. The record is created first with a
// placeholder token because the directory assigns the id, and the
// session token must carry the real id; the token is then issued and
// persisted in a second step. The two steps are not transactional: if
// the token persist fails the record keeps the placeholder and the
// error is surfaced, with no compensating delete.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var fields []string
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "name field is empty")
	}
	email = normalizeEmail(email)
	if email == "" {
		fields = append(fields, "email field is empty")
	} else if !emailRe.MatchString(email) {
		fields = append(fields, "invalid email")
	}
	if password == "" {
		fields = append(fields, "password field is empty")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistErr("find user", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		AuthType:     domain.AuthLocal,
		SessionToken: placeholderToken,
		IsLoggedIn:   true,
	}
	id, err := s.Store.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		// lost the race against a concurrent register
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, persistErr("create user", err)
	}

	token, err := security.MakeAccess(s.JWTSecret, id, u.Email, u.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.Store.Update(ctx, id, repo.UserUpdate{SessionToken: &token}); err != nil {
		return nil, persistErr("persist token", err)
	}

	return &Session{ID: id, Name: u.Name, Email: u.Email, Token: token}, nil
}

// LoginLocal authenticates an email/password pair. It returns the
// stored session token; login does not reissue tokens.
func (s *Service) LoginLocal(ctx context.Context, email, password string) (*Session, error) {
	var fields []string
	email = normalizeEmail(email)
	if email == "" {
		fields = append(fields, "email field is empty")
	} else if !emailRe.MatchString(email) {
		fields = append(fields, "invalid email")
	}
	if password == "" {
		fields = append(fields, "password field is empty")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistErr("find user", err)
	}
	if u == nil || u.AuthType != domain.AuthLocal || !security.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	loggedIn := true
	if err := s.Store.Update(ctx, u.ID.Hex(), repo.UserUpdate{IsLoggedIn: &loggedIn}); err != nil {
		return nil, persistErr("update login status", err)
	}

	return &Session{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Token: u.SessionToken}, nil
}

// SignoutLocal ends a local session. The token must verify and its uid
// claim must match the supplied id. Idempotent: signing out an already
// signed-out user succeeds.
func (s *Service) SignoutLocal(ctx context.Context, id, token string) error {
	var fields []string
	if id == "" {
		fields = append(fields, "_id field is empty")
	}
	if token == "" {
		fields = append(fields, "accessToken field is empty")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	u, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return persistErr("find user", err)
	}
	if u == nil {
		return ErrInvalidID
	}

	claims, err := security.ParseAccess(s.JWTSecret, token)
	if err != nil || claims.UID != id {
		return ErrInvalidToken
	}

	loggedIn := false
	if err := s.Store.Update(ctx, id, repo.UserUpdate{IsLoggedIn: &loggedIn}); err != nil {
		return persistErr("update login status", err)
	}
	return nil
}

// LoginExternal verifies a provider token, loads the profile and
// reconciles it with the directory. On an email collision the existing
// record is converted to external auth (merge policy): external id and
// token overwrite, the password hash is cleared and becomes permanently
// unusable, the id is kept.
func (s *Service) LoginExternal(ctx context.Context, userToken string) (*ExternalSession, error) {
	if userToken == "" {
		return nil, &ValidationError{Fields: []string{"accessToken field is empty"}}
	}

	externalID, err := s.Provider.VerifyToken(ctx, userToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	p, err := s.Provider.FetchProfile(ctx, externalID, userToken)
	if err != nil {
		return nil, ErrProviderUnavailable
	}
	email := normalizeEmail(p.Email)

	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistErr("find user", err)
	}

	if u != nil {
		ext := domain.AuthExternal
		noHash := ""
		loggedIn := true
		if err := s.Store.Update(ctx, u.ID.Hex(), repo.UserUpdate{
			ExternalID:   &p.ExternalID,
			AuthType:     &ext,
			PasswordHash: &noHash,
			SessionToken: &userToken,
			IsLoggedIn:   &loggedIn,
		}); err != nil {
			return nil, persistErr("merge user", err)
		}
		return &ExternalSession{
			ID: u.ID.Hex(), ExternalID: p.ExternalID,
			Name: p.Name, Email: email, Token: userToken,
		}, nil
	}

	nu := &domain.User{
		ExternalID:   p.ExternalID,
		Name:         p.Name,
		Email:        email,
		AuthType:     domain.AuthExternal,
		SessionToken: userToken,
		IsLoggedIn:   true,
	}
	id, err := s.Store.Create(ctx, nu)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, persistErr("create user", err)
	}
	return &ExternalSession{
		ID: id, ExternalID: p.ExternalID,
		Name: p.Name, Email: email, Token: userToken,
	}, nil
}

// SignoutExternal ends a provider session. The stored external id and
// session token must both match; the token is cleared together with
// the login flag.
func (s *Service) SignoutExternal(ctx context.Context, id, externalID, token string) error {
	var fields []string
	if id == "" {
		fields = append(fields, "_id field is empty")
	}
	if externalID == "" {
		fields = append(fields, "user_id field is empty")
	}
	if token == "" {
		fields = append(fields, "accessToken field is empty")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	u, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return persistErr("find user", err)
	}
	if u == nil {
		return ErrInvalidID
	}
	if u.ExternalID != externalID {
		return ErrInvalidExternalID
	}
	if u.SessionToken != token {
		return ErrInvalidToken
	}

	loggedIn := false
	noToken := ""
	if err := s.Store.Update(ctx, id, repo.UserUpdate{IsLoggedIn: &loggedIn, SessionToken: &noToken}); err != nil {
		return persistErr("update login status", err)
	}
	return nil
}
