package cookie

import (
	"net/http"
	"time"

	"github.com/dietgen/dietplan/internal/models"
)

const (
	AccessName  = "accessToken"
	RefreshName = "refreshToken"

	AccessPath  = "/api"
	RefreshPath = "/api/auth/refresh"
)

// Writes session cookies. Both cookies are HttpOnly and SameSite=Strict
type Jar struct {
	// Send cookies over https only
	Secure bool

	// Used to compute Max-Age from token expiration. time.Now if not set
	Now func() time.Time
}

func (j Jar) SetAccess(w http.ResponseWriter, token models.IssuedToken) {
	http.SetCookie(w, j.cookie(AccessName, AccessPath, token))
}

func (j Jar) SetRefresh(w http.ResponseWriter, token models.IssuedToken) {
	http.SetCookie(w, j.cookie(RefreshName, RefreshPath, token))
}

// Expire both cookies in the browser
func (j Jar) Clear(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{AccessName, AccessPath},
		{RefreshName, RefreshPath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   j.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// Cookie value or empty string if request has no such cookie
func Value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (j Jar) cookie(name string, path string, token models.IssuedToken) *http.Cookie {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	maxAge := int(token.ExpiresAt.Sub(now()).Round(time.Second).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     path,
		MaxAge:   maxAge,
		Expires:  token.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
