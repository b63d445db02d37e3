package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName carries the session credential.
const CookieName = "authToken"

// SessionCookie writes and clears the session cookie. Development relaxes the
// attributes so http://localhost works; production allows the frontend origin
// to send it cross-site.
type SessionCookie struct {
	Development bool
	TTL         time.Duration
}

func (s SessionCookie) cookie(value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   !s.Development,
		SameSite: http.SameSiteNoneMode,
	}
	if s.Development {
		ck.SameSite = http.SameSiteStrictMode
	}
	return ck
}

func (s SessionCookie) Set(c *gin.Context, credential string) {
	ck := s.cookie(credential)
	ck.Expires = time.Now().Add(s.TTL)
	ck.MaxAge = int(s.TTL.Seconds())
	http.SetCookie(c.Writer, ck)
}

func (s SessionCookie) Clear(c *gin.Context) {
	ck := s.cookie("")
	ck.Expires = time.Unix(0, 0)
	ck.MaxAge = -1
	http.SetCookie(c.Writer, ck)
}
