package blobstore

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Links builds and verifies time-limited browsable URLs for corpus
// documents. A signed link embeds the object key in an HS256 token so
// the document endpoint can serve private files without client auth.
type Links struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewLinks returns a link builder. An empty secret disables signing:
// BrowsableURL then returns plain unsigned document URLs.
func NewLinks(baseURL, secret string, ttl time.Duration) *Links {
	return &Links{
		baseURL: baseURL,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

type linkClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// BrowsableURL returns a URL under /docs/ that serves the given object key.
// With a signing secret configured the URL carries an expiring token.
func (l *Links) BrowsableURL(key string) (string, error) {
	base := fmt.Sprintf("%s/docs/%s", l.baseURL, url.PathEscape(key))
	if len(l.secret) == 0 {
		return base, nil
	}
	now := l.now()
	claims := linkClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("signing link for %s: %w", key, err)
	}
	return base + "?token=" + url.QueryEscape(token), nil
}

// Verify checks a token and returns the object key it grants access to.
func (l *Links) Verify(tokenStr string) (string, error) {
	if len(l.secret) == 0 {
		return "", fmt.Errorf("link signing not configured")
	}
	var claims linkClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return l.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return l.now() }))
	if err != nil {
		return "", fmt.Errorf("invalid link token: %w", err)
	}
	if !token.Valid || claims.Key == "" {
		return "", fmt.Errorf("invalid link token")
	}
	return claims.Key, nil
}

// Signed reports whether links carry signatures.
func (l *Links) Signed() bool {
	return len(l.secret) > 0
}
