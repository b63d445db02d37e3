package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"digiread/internal/middleware"
	"digiread/internal/models"
	"digiread/internal/services"
	"digiread/internal/validation"
)

// identity returns the caller resolved by middleware.SessionAuth, answering 401 when absent.
func identity(c *gin.Context) (*models.AuthContext, bool) {
	ac, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
		return nil, false
	}
	return ac, true
}

// bindJSON binds through the cached body so middleware may have read it first.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validation.Errors(err)})
		return false
	}
	return true
}

func bindForm(c *gin.Context, dst any) bool {
	if err := c.ShouldBindWith(dst, binding.FormMultipart); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validation.Errors(err)})
		return false
	}
	return true
}

func fieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": map[string][]string{field: {msg}}})
}

// readUpload loads an optional multipart file. A missing field yields nil.
func readUpload(c *gin.Context, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}
