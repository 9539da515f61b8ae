package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Claims is the bearer token payload: the subject is the user id.
type Claims struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// Authenticator turns HS256 bearer tokens into principals.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Issue signs a token for p. Used by tooling and tests.
func (a *Authenticator) Issue(p kernel.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		CompanyID: p.CompanyID().String(),
		Role:      string(p.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Principal verifies the token and rebuilds the principal it names.
func (a *Authenticator) Principal(token string) (kernel.Principal, error) {
	var claims Claims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return kernel.Principal{}, err
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Principal{}, err
	}
	companyID, err := kernel.UUIDFromString(claims.CompanyID)
	if err != nil {
		return kernel.Principal{}, err
	}
	role := kernel.Role(claims.Role)
	if role == "" {
		role = kernel.RoleMember
	}
	return kernel.NewPrincipal(userID, companyID, role)
}

// Middleware requires a valid bearer token on every request skip does not
// exempt and stores the principal on the echo context.
func (a *Authenticator) Middleware(skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			token, err := bearer(c.Request())
			if err == nil {
				var p kernel.Principal
				if p, err = a.Principal(token); err == nil {
					c.Set(principalKey, p)
					return next(c)
				}
			}
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return c.JSON(http.StatusUnauthorized, ErrorBody{Code: "Unauthenticated", Message: "missing or invalid bearer token"})
		}
	}
}

func bearer(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

// principal returns the authenticated principal. Routes behind the
// authenticator always have one.
func principal(c echo.Context) kernel.Principal {
	p, _ := c.Get(principalKey).(kernel.Principal)
	return p
}
