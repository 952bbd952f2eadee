package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daap14/formadmin/internal/store"
)

// Cookie names shared with the browser client.
const (
	TokenCookie  = "sessionToken"
	ClaimsCookie = "userData"
)

// ErrInvalidSession is returned when a request carries no usable session.
var ErrInvalidSession = errors.New("invalid or missing session")

// Claims is the public identity carried by a session.
type Claims struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  store.Role `json:"role"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == store.RoleAdmin
}

// Session is an issued session: the value of the token cookie plus the claims.
type Session struct {
	Token  string
	Claims Claims
}

// SessionOptions configures cookie attributes and optional token signing.
type SessionOptions struct {
	TTL    time.Duration
	Secret string
	Path   string
	Secure bool
}

// Sessions issues, writes, reads and clears session cookies.
//
// Without a secret the token cookie holds an opaque random value and the
// claims cookie is trusted as sent. With a secret the token cookie holds an
// HS256 JWT and only its verified claims are used.
type Sessions struct {
	ttl    time.Duration
	secret []byte
	path   string
	secure bool
	now    func() time.Time
}

type sessionToken struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  store.Role `json:"role"`
}

// NewSessions returns a Sessions for opts.
func NewSessions(opts SessionOptions) *Sessions {
	path := opts.Path
	if path == "" {
		path = "/"
	}
	s := &Sessions{
		ttl:    opts.TTL,
		path:   path,
		secure: opts.Secure,
		now:    time.Now,
	}
	if opts.Secret != "" {
		s.secret = []byte(opts.Secret)
	}
	return s
}

// Signed reports whether session tokens are signed JWTs.
func (s *Sessions) Signed() bool {
	return len(s.secret) > 0
}

// Issue creates a session for u.
func (s *Sessions) Issue(u *store.User) (*Session, error) {
	id, err := randomToken()
	if err != nil {
		return nil, err
	}

	claims := Claims{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	if !s.Signed() {
		return &Session{Token: id, Claims: claims}, nil
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionToken{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}
	return &Session{Token: signed, Claims: claims}, nil
}

// Write sets both session cookies on w.
func (s *Sessions) Write(w http.ResponseWriter, sess *Session) error {
	data, err := json.Marshal(sess.Claims)
	if err != nil {
		return fmt.Errorf("encoding session claims: %w", err)
	}

	expires := s.now().Add(s.ttl)
	maxAge := int(s.ttl / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    sess.Token,
		Path:     s.path,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     ClaimsCookie,
		Value:    url.PathEscape(string(data)),
		Path:     s.path,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires both session cookies.
func (s *Sessions) Clear(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, ClaimsCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     s.path,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: name == TokenCookie,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// HasToken reports whether r carries a non-empty token cookie.
func (s *Sessions) HasToken(r *http.Request) bool {
	c, err := r.Cookie(TokenCookie)
	return err == nil && c.Value != ""
}

// Read resolves the session carried by r.
func (s *Sessions) Read(r *http.Request) (*Session, error) {
	var token string
	if c, err := r.Cookie(TokenCookie); err == nil {
		token = c.Value
	}

	if s.Signed() {
		if token == "" {
			return nil, ErrInvalidSession
		}
		claims, err := s.parse(token)
		if err != nil {
			return nil, err
		}
		return &Session{Token: token, Claims: *claims}, nil
	}

	c, err := r.Cookie(ClaimsCookie)
	if err != nil || c.Value == "" {
		return nil, ErrInvalidSession
	}
	raw, err := url.PathUnescape(c.Value)
	if err != nil {
		return nil, ErrInvalidSession
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return &Session{Token: token, Claims: claims}, nil
}

func (s *Sessions) parse(token string) (*Claims, error) {
	var tc sessionToken
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || tc.Subject == "" {
		return nil, ErrInvalidSession
	}
	return &Claims{ID: tc.Subject, Email: tc.Email, Name: tc.Name, Role: tc.Role}, nil
}

// randomToken returns 256 bits of randomness as hex.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
