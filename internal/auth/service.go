package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const defaultAccessTTL = 12 * time.Hour

// Roles recognised by the till. Admins may change catalog prices;
// operators run the register.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

// ErrInvalidCredentials is returned when neither a badge nor a PIN matches.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Operator is a till user. PINs are hashed at seed time and never stored
// in clear text.
type Operator struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Barcode string `json:"-"`

	pinHash string
}

// SeedOperator is the clear-text form used to provision the operator list.
type SeedOperator struct {
	ID      string
	Name    string
	Role    string
	Barcode string
	PIN     string
}

// DefaultOperators returns the built-in staff roster for a fresh till.
func DefaultOperators() []SeedOperator {
	return []SeedOperator{
		{ID: "1", Name: "Santi (Dueño)", Role: RoleAdmin, Barcode: "ADM001", PIN: "1234"},
		{ID: "2", Name: "Juan Carnicero", Role: RoleOperator, Barcode: "OP001", PIN: "0000"},
		{ID: "3", Name: "Cajera María", Role: RoleOperator, Barcode: "OP002", PIN: "1111"},
	}
}

// Service authenticates operators by badge scan or PIN and issues
// signed access tokens for the session.
type Service struct {
	operators []Operator
	byID      map[string]int
	secret    []byte
	accessTTL time.Duration
	issuer    string
	signer    jwa.SignatureAlgorithm
	now       func() time.Time
}

// Config configures the auth service.
type Config struct {
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Operators      []SeedOperator
}

// LoginResult bundles the operator and token material issued on login.
type LoginResult struct {
	Operator    Operator  `json:"operator"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewService hashes the seeded PINs and constructs a Service.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "santi-pos"
	}
	seeds := cfg.Operators
	if len(seeds) == 0 {
		seeds = DefaultOperators()
	}

	s := &Service{
		operators: make([]Operator, 0, len(seeds)),
		byID:      make(map[string]int, len(seeds)),
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    issuer,
		signer:    jwa.HS256,
		now:       time.Now,
	}
	for _, seed := range seeds {
		if seed.ID == "" || seed.PIN == "" {
			return nil, fmt.Errorf("auth: operator %q needs an id and a pin", seed.Name)
		}
		hash, err := argon2id.CreateHash(seed.PIN, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("hash pin: %w", err)
		}
		s.byID[seed.ID] = len(s.operators)
		s.operators = append(s.operators, Operator{
			ID:      seed.ID,
			Name:    seed.Name,
			Role:    seed.Role,
			Barcode: strings.TrimSpace(seed.Barcode),
			pinHash: hash,
		})
	}
	return s, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login accepts a badge barcode or a PIN, in that order. Badge scans are
// exact matches; a PIN is compared against every operator's hash so the
// keypad flow needs no prior identity selection.
func (s *Service) Login(ctx context.Context, code string) (LoginResult, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	op, ok := s.matchBarcode(trimmed)
	if !ok {
		op, ok = s.matchPIN(trimmed)
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.signAccessToken(op)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{Operator: op, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Me returns the operator for a previously authenticated id.
func (s *Service) Me(id string) (Operator, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Operator{}, false
	}
	return s.operators[idx], true
}

// ParseAccessToken validates a token and returns the operator it names.
func (s *Service) ParseAccessToken(token string) (Operator, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Operator{}, ErrInvalidCredentials
	}
	parsed, err := jwt.ParseString(trimmed,
		jwt.WithKey(s.signer, s.secret),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return Operator{}, ErrInvalidCredentials
	}
	op, ok := s.Me(parsed.Subject())
	if !ok {
		return Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

func (s *Service) matchBarcode(code string) (Operator, bool) {
	for _, op := range s.operators {
		if op.Barcode != "" && op.Barcode == code {
			return op, true
		}
	}
	return Operator{}, false
}

func (s *Service) matchPIN(pin string) (Operator, bool) {
	for _, op := range s.operators {
		ok, err := argon2id.ComparePasswordAndHash(pin, op.pinHash)
		if err == nil && ok {
			return op, true
		}
	}
	return Operator{}, false
}

func (s *Service) signAccessToken(op Operator) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(op.ID).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("role", op.Role).
		Claim("name", op.Name).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}
