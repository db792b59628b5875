package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// The session token is split across two cookies: "auth" carries the readable
// header and payload, "sign" carries the signature and is HttpOnly.
const (
	authCookie = "auth"
	signCookie = "sign"
)

type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode, nil
	case "LAX":
		return http.SameSiteLaxMode, nil
	case "", "STRICT":
		return http.SameSiteStrictMode, nil
	case "NONE":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("unknown samesite mode %q", s)
}

func NewCookies(cfg Cookie, j *JWT) (*Cookies, error) {
	sameSite, err := ParseSameSite(cfg.SameSite)
	if err != nil {
		return nil, err
	}
	cookies := &Cookies{
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		SameSite: sameSite,
		jwt:      j,
	}
	return cookies, nil
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, httpOnly bool, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, authCookie, "delete", false, time.Time{}, -1)
	c.set(w, signCookie, "delete", true, time.Time{}, -1)
}

func (c *Cookies) Refresh(w http.ResponseWriter, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := time.Now().Add(c.jwt.tokenLifetime)
	c.set(w, authCookie, header+"."+payload, false, expires, 0)
	c.set(w, signCookie, signature, true, expires, 0)
	return nil
}

// Issue signs a session for gameID and sets it on w.
func (c *Cookies) Issue(w http.ResponseWriter, gameID string) error {
	token, err := c.jwt.Sign(c.jwt.NewSessionClaims(gameID))
	if err != nil {
		return fmt.Errorf("unable to sign session: %w", err)
	}
	return c.Refresh(w, token)
}

func (c *Cookies) ParseSessionClaims(r *http.Request) (*SessionClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(auth.Value+"."+sign.Value, &SessionClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.GameID == "" {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
