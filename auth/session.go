package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type Kind string

const (
	KindDashboard Kind = "dashboard"
	KindEmployee  Kind = "employee"
)

const (
	DashboardCookie = "token"
	EmployeeCookie  = "employee_token"
)

// Principal is whoever a request is acting as.
type Principal struct {
	Kind Kind
	ID   string
	Role string
}

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Resolver reads the current principal from a request, or nil.
type Resolver interface {
	Read(r *http.Request) *Principal
}

// Sessions issues and verifies one kind of signed session cookie.
type Sessions struct {
	kind   Kind
	secret []byte
	cookie string
	ttl    time.Duration
	domain string
	secure bool
}

func NewDashboardSessions(secret string, ttl time.Duration, domain string, secure bool) *Sessions {
	return &Sessions{kind: KindDashboard, secret: []byte(secret), cookie: DashboardCookie, ttl: ttl, domain: domain, secure: secure}
}

func NewEmployeeSessions(secret string, ttl time.Duration, domain string, secure bool) *Sessions {
	return &Sessions{kind: KindEmployee, secret: []byte(secret), cookie: EmployeeCookie, ttl: ttl, domain: domain, secure: secure}
}

func (s *Sessions) Kind() Kind         { return s.kind }
func (s *Sessions) CookieName() string { return s.cookie }

func (s *Sessions) Issue(id, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   id,
			Audience:  string(s.kind),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Sessions) Parse(signedToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyAudience(string(s.kind), true) {
		return nil, errors.New("token audience mismatch")
	}
	if claims.Subject == "" {
		return nil, errors.New("token without subject")
	}
	return claims, nil
}

// Read takes the token from this scheme's cookie, or failing that from an
// Authorization: Bearer header. Absent, invalid and expired tokens all yield nil.
func (s *Sessions) Read(r *http.Request) *Principal {
	token := ""
	if cookie, err := r.Cookie(s.cookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		return nil
	}

	claims, err := s.Parse(token)
	if err != nil {
		return nil
	}
	return &Principal{Kind: s.kind, ID: claims.Subject, Role: claims.Role}
}

func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		MaxAge:   int(s.ttl.Seconds()),
		Path:     "/",
		Domain:   s.domain,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Path:     "/",
		Domain:   s.domain,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AnyOf resolves the first principal found among several schemes.
type AnyOf []Resolver

func (a AnyOf) Read(r *http.Request) *Principal {
	for _, res := range a {
		if p := res.Read(r); p != nil {
			return p
		}
	}
	return nil
}
