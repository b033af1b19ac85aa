package auth

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/salon-api/internal/model"
)

// JWTService issues and validates the bearer tokens that carry an Identity.
// Tokens are HS256 with the user id in sub and a role claim.
type JWTService interface {
	GenerateAccessToken(id model.Identity, ttl time.Duration) (string, error)
	ValidateToken(token string) (model.Identity, error)
}

type jwtService struct {
	secret []byte
	issuer string
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(secret, issuer string) JWTService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &jwtService{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}
}

// GenerateAccessToken is used by local tooling. Production tokens come from
// the account service with the same shared secret.
func (s *jwtService) GenerateAccessToken(id model.Identity, ttl time.Duration) (string, error) {
	if id.ID <= 0 || !id.Role.Valid() {
		return "", fmt.Errorf("cannot issue a token for %d/%s", id.ID, id.Role)
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  id.ID,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtService) ValidateToken(token string) (model.Identity, error) {
	claims := jwt.MapClaims{}
	if _, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return model.Identity{}, err
	}

	var id model.Identity
	switch sub := claims["sub"].(type) {
	case float64:
		if sub != math.Trunc(sub) || sub > math.MaxInt64 {
			return model.Identity{}, fmt.Errorf("invalid sub claim")
		}
		id.ID = int64(sub)
	case string:
		n, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return model.Identity{}, fmt.Errorf("invalid sub claim: %w", err)
		}
		id.ID = n
	default:
		return model.Identity{}, fmt.Errorf("missing sub claim")
	}
	if id.ID <= 0 {
		return model.Identity{}, fmt.Errorf("invalid sub claim")
	}

	role, _ := claims["role"].(string)
	id.Role = model.Role(role)
	if !id.Role.Valid() {
		return model.Identity{}, fmt.Errorf("invalid role claim %q", role)
	}
	return id, nil
}
