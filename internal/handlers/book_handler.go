package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"digiread/internal/models"
	"digiread/internal/services"
)

type BookHandler struct {
	service services.BookService
}

func NewBookHandler(service services.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// bookForm is the multipart body of create and update. price and fileInfo are JSON strings.
type bookForm struct {
	Title           string `form:"title" binding:"required"`
	Description     string `form:"description" binding:"required"`
	Genre           string `form:"genre" binding:"required"`
	Language        string `form:"language" binding:"required"`
	PublicationName string `form:"publicationName" binding:"required"`
	PublishedAt     string `form:"publishedAt" binding:"required"`
	Price           string `form:"price" binding:"required"`
	FileInfo        string `form:"fileInfo"`
	UploadMethod    string `form:"uploadMethod" binding:"required,oneof=aws local"`
	Slug            string `form:"slug"`
}

// price amounts arrive in major units
type priceForm struct {
	MRP  *float64 `json:"mrp"`
	Sale *float64 `json:"sale"`
}

func minor(v float64) int64 { return int64(math.Round(v * 100)) }

func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// input converts the form, answering 422 itself when a field is malformed.
func (f *bookForm) input(c *gin.Context, fileInfoRequired bool) (services.BookInput, bool) {
	in := services.BookInput{
		Title:           f.Title,
		Description:     f.Description,
		Genre:           f.Genre,
		Language:        f.Language,
		PublicationName: f.PublicationName,
		UploadMethod:    f.UploadMethod,
	}

	published, err := parsePublished(f.PublishedAt)
	if err != nil {
		fieldError(c, "publishedAt", "Invalid publish date!")
		return in, false
	}
	in.PublishedAt = published

	var p priceForm
	if err := json.Unmarshal([]byte(f.Price), &p); err != nil || p.MRP == nil || p.Sale == nil {
		fieldError(c, "price", "Invalid Price Data!")
		return in, false
	}
	in.Price = models.Price{MRP: minor(*p.MRP), Sale: minor(*p.Sale)}

	if f.FileInfo == "" {
		if fileInfoRequired {
			fieldError(c, "fileInfo", "File info is missing!")
			return in, false
		}
		return in, true
	}
	var meta services.FileMeta
	if err := json.Unmarshal([]byte(f.FileInfo), &meta); err != nil {
		fieldError(c, "fileInfo", "Invalid File Info!")
		return in, false
	}
	in.FileInfo = &meta
	return in, true
}

func (h *BookHandler) uploads(c *gin.Context) (cover, file *services.Upload, ok bool) {
	var err error
	if cover, err = readUpload(c, "cover"); err == nil {
		file, err = readUpload(c, "book")
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file upload"})
		return nil, nil, false
	}
	return cover, file, true
}

func (h *BookHandler) Create(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var form bookForm
	if !bindForm(c, &form) {
		return
	}
	in, ok := form.input(c, true)
	if !ok {
		return
	}
	cover, file, ok := h.uploads(c)
	if !ok {
		return
	}

	url, err := h.service.Create(c.Request.Context(), ac, in, cover, file)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.String(http.StatusOK, url)
}

func (h *BookHandler) Update(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	var form bookForm
	if !bindForm(c, &form) {
		return
	}
	if strings.TrimSpace(form.Slug) == "" {
		fieldError(c, "slug", "Invalid slug!")
		return
	}
	in, ok := form.input(c, false)
	if !ok {
		return
	}
	cover, file, ok := h.uploads(c)
	if !ok {
		return
	}

	url, err := h.service.Update(c.Request.Context(), ac, strings.TrimSpace(form.Slug), in, cover, file)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found!"})
		return
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.String(http.StatusOK, url)
}

func (h *BookHandler) Details(c *gin.Context) {
	book, err := h.service.Details(c.Request.Context(), c.Param("slug"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found!"})
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

func (h *BookHandler) ByGenre(c *gin.Context) {
	books, err := h.service.ByGenre(c.Request.Context(), c.Param("genre"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *BookHandler) Read(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	res, err := h.service.Read(c.Request.Context(), ac, c.Param("slug"))
	if !h.readable(c, err) {
		return
	}
	c.JSON(http.StatusOK, res)
}

// File streams a locally stored epub to its owner.
func (h *BookHandler) File(c *gin.Context) {
	ac, ok := identity(c)
	if !ok {
		return
	}
	path, err := h.service.LocalFile(c.Request.Context(), ac, c.Param("slug"))
	if !h.readable(c, err) {
		return
	}
	c.Header("Content-Type", models.EpubMimeType)
	c.File(path)
}

func (h *BookHandler) readable(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found!"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Sorry we didn't found the book inside your library!"})
	default:
		_ = c.Error(err)
	}
	return false
}
