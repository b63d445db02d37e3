package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"digiread/internal/services"
)

type VerifyHandler struct {
	authService services.AuthService
}

func NewVerifyHandler(authService services.AuthService) *VerifyHandler {
	return &VerifyHandler{authService: authService}
}

// The redirect URL carries the raw credential, so it ends up in browser
// history. The frontend exchanges it for a cookie right away.
var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Redirecting...</title>
  </head>
  <body>
    <script>
      window.location.href = {{.}};
    </script>
    <noscript>
      <a href="{{.}}">Click here to continue</a>
    </noscript>
  </body>
</html>
`))

type verifyResponse struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
	Token       string `json:"token"`
	Profile     any    `json:"profile"`
}

// renderVerification is the single place that picks between the browser
// redirect page and the JSON body.
func renderVerification(acceptsHTML bool, res *services.VerifyResult) (int, string, []byte, error) {
	if acceptsHTML {
		var buf bytes.Buffer
		if err := redirectPage.Execute(&buf, res.RedirectURL); err != nil {
			return 0, "", nil, err
		}
		return http.StatusOK, "text/html; charset=utf-8", buf.Bytes(), nil
	}
	body, err := json.Marshal(verifyResponse{
		Message:     "Verification successful",
		RedirectURL: res.RedirectURL,
		Token:       res.Credential,
		Profile:     res.Profile,
	})
	if err != nil {
		return 0, "", nil, err
	}
	return http.StatusOK, "application/json; charset=utf-8", body, nil
}

// @Summary      Verify a magic link
// @Description  Consumes the emailed token. Browsers get an auto-redirect page, other clients JSON.
// @Tags         Auth
// @Produce      html
// @Produce      json
// @Param        token   query  string  true  "Verification token"
// @Param        userId  query  string  true  "User id"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/verify [get]
func (h *VerifyHandler) Verify(c *gin.Context) {
	res, err := h.authService.Verify(c.Request.Context(), c.Query("token"), c.Query("userId"))
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid request!"})
		return
	case errors.Is(err, services.ErrTokenMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid request, token mismatch!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}

	status, contentType, body, err := renderVerification(strings.Contains(c.GetHeader("Accept"), "text/html"), res)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(status, contentType, body)
}
