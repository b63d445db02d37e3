package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/repositories"
	"digiread/internal/storage"
)

// GenreListLimit caps GET /book/by-genre.
const GenreListLimit = 10

// FileMeta describes the epub the client is about to upload.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type BookInput struct {
	Title           string
	Description     string
	Genre           string
	Language        string
	PublicationName string
	PublishedAt     time.Time
	Price           models.Price
	FileInfo        *FileMeta
	UploadMethod    string
}

func (in *BookInput) validate() error {
	if in.Price.MRP < 0 || in.Price.Sale < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Price.Sale > in.Price.MRP {
		return fmt.Errorf("%w: sale price should be less than mrp", ErrInvalidInput)
	}
	if in.FileInfo != nil && in.FileInfo.Size < 0 {
		return fmt.Errorf("%w: invalid fileInfo.size", ErrInvalidInput)
	}
	switch in.UploadMethod {
	case models.UploadMethodAWS, models.UploadMethodLocal:
	default:
		return fmt.Errorf("%w: uploadMethod needs to be either aws or local", ErrInvalidInput)
	}
	return nil
}

type BookDetails struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Description     string            `json:"description"`
	Genre           string            `json:"genre"`
	Language        string            `json:"language"`
	PublicationName string            `json:"publicationName"`
	PublishedAt     string            `json:"publishedAt"`
	Price           map[string]string `json:"price"`
	Cover           string            `json:"cover,omitempty"`
	Rating          string            `json:"rating,omitempty"`
	FileSize        string            `json:"fileSize"`
	Author          struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"author"`
}

type ReadingSettings struct {
	LastLocation string             `json:"lastLocation"`
	Highlights   []models.Highlight `json:"highlights"`
}

type ReadResult struct {
	URL      string           `json:"url"`
	Settings *ReadingSettings `json:"settings"`
}

type BookService interface {
	// Create returns the presigned upload URL for aws uploads, empty for local ones.
	Create(ctx context.Context, ac *models.AuthContext, in BookInput, cover, file *Upload) (string, error)
	Update(ctx context.Context, ac *models.AuthContext, bookSlug string, in BookInput, cover, file *Upload) (string, error)
	Details(ctx context.Context, bookSlug string) (*BookDetails, error)
	ByGenre(ctx context.Context, genre string) ([]BookSummary, error)
	Read(ctx context.Context, ac *models.AuthContext, bookSlug string) (*ReadResult, error)
	// LocalFile resolves the on-disk epub of a locally uploaded, purchased book.
	LocalFile(ctx context.Context, ac *models.AuthContext, bookSlug string) (string, error)
}

type bookService struct {
	books     repositories.BookRepository
	authors   repositories.AuthorRepository
	histories repositories.HistoryRepository
	store     storage.ObjectStore
	booksDir  string
	log       logging.Logger
}

func NewBookService(
	books repositories.BookRepository,
	authors repositories.AuthorRepository,
	histories repositories.HistoryRepository,
	store storage.ObjectStore,
	filesRoot string,
	log logging.Logger,
) BookService {
	return &bookService{
		books:     books,
		authors:   authors,
		histories: histories,
		store:     store,
		booksDir:  filepath.Join(filepath.Clean(filesRoot), "books"),
		log:       log.With("component", "book"),
	}
}

func epubKey(id bson.ObjectID, title string) string {
	return slug.Make(id.Hex()+" "+title) + ".epub"
}

func coverKey(id bson.ObjectID, title string) string {
	return slug.Make(id.Hex()+" "+title) + ".png"
}

func isEpub(u *Upload) bool {
	return u != nil && u.ContentType == models.EpubMimeType
}

func isImage(u *Upload) bool {
	return u != nil && strings.HasPrefix(u.ContentType, "image")
}

func (s *bookService) Create(ctx context.Context, ac *models.AuthContext, in BookInput, cover, file *Upload) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	if in.FileInfo == nil {
		return "", fmt.Errorf("%w: fileInfo is missing", ErrInvalidInput)
	}
	authorID, err := bson.ObjectIDFromHex(ac.AuthorID)
	if err != nil {
		return "", ErrUnauthorized
	}

	book := &models.Book{
		ID:              bson.NewObjectID(),
		Author:          authorID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Language:        strings.TrimSpace(in.Language),
		Genre:           strings.TrimSpace(in.Genre),
		PublicationName: strings.TrimSpace(in.PublicationName),
		PublishedAt:     in.PublishedAt,
		Price:           in.Price,
		UploadMethod:    in.UploadMethod,
	}
	book.Slug = slug.Make(book.Title + " " + book.ID.Hex())
	book.FileInfo = models.FileInfo{ID: epubKey(book.ID, book.Title), Size: humanize.Bytes(uint64(in.FileInfo.Size))}

	var uploadURL string
	switch in.UploadMethod {
	case models.UploadMethodLocal:
		if !isEpub(file) {
			return "", fmt.Errorf("%w: invalid book file", ErrInvalidInput)
		}
		if err := s.writeLocal(book.FileInfo.ID, file.Data); err != nil {
			return "", err
		}
	case models.UploadMethodAWS:
		uploadURL, err = s.store.SignedUploadURL(ctx, book.FileInfo.ID, in.FileInfo.Type)
		if err != nil {
			return "", err
		}
		if isImage(cover) {
			if book.Cover, err = s.putCover(ctx, book, cover); err != nil {
				return "", err
			}
		}
	}

	if err := s.books.Create(ctx, book); err != nil {
		return "", err
	}
	if err := s.authors.AddBook(ctx, ac.AuthorID, book.ID); err != nil {
		return "", err
	}
	s.log.Info(ctx, "book created", "book_id", book.ID.Hex(), "author_id", ac.AuthorID, "method", in.UploadMethod)
	return uploadURL, nil
}

func (s *bookService) Update(ctx context.Context, ac *models.AuthContext, bookSlug string, in BookInput, cover, file *Upload) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	authorID, err := bson.ObjectIDFromHex(ac.AuthorID)
	if err != nil {
		return "", ErrUnauthorized
	}
	book, err := s.books.GetBySlugAndAuthor(ctx, bookSlug, authorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	book.Title = strings.TrimSpace(in.Title)
	book.Description = strings.TrimSpace(in.Description)
	book.Language = strings.TrimSpace(in.Language)
	book.PublicationName = strings.TrimSpace(in.PublicationName)
	book.Genre = strings.TrimSpace(in.Genre)
	book.PublishedAt = in.PublishedAt
	book.Price = in.Price

	size := func() string {
		if in.FileInfo != nil && in.FileInfo.Size > 0 {
			return humanize.Bytes(uint64(in.FileInfo.Size))
		}
		return humanize.Bytes(uint64(file.Size))
	}

	var uploadURL string
	switch in.UploadMethod {
	case models.UploadMethodLocal:
		if isEpub(file) {
			old := filepath.Join(s.booksDir, filepath.Base(book.FileInfo.ID))
			if err := os.Remove(old); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return "", fmt.Errorf("%w: book file not found", ErrNotFound)
				}
				return "", fmt.Errorf("remove book file: %w", err)
			}
			key := epubKey(book.ID, book.Title)
			if err := s.writeLocal(key, file.Data); err != nil {
				return "", err
			}
			book.FileInfo = models.FileInfo{ID: key, Size: size()}
			book.UploadMethod = models.UploadMethodLocal
		}
	case models.UploadMethodAWS:
		if isEpub(file) {
			if err := s.store.Delete(ctx, storage.Private, book.FileInfo.ID); err != nil {
				return "", err
			}
			key := epubKey(book.ID, book.Title)
			contentType := file.ContentType
			if in.FileInfo != nil && in.FileInfo.Type != "" {
				contentType = in.FileInfo.Type
			}
			if uploadURL, err = s.store.SignedUploadURL(ctx, key, contentType); err != nil {
				return "", err
			}
			book.FileInfo = models.FileInfo{ID: key, Size: size()}
			book.UploadMethod = models.UploadMethodAWS
		}
		if isImage(cover) {
			if book.Cover != nil && book.Cover.ID != "" {
				if err := s.store.Delete(ctx, storage.Public, book.Cover.ID); err != nil {
					return "", err
				}
			}
			if book.Cover, err = s.putCover(ctx, book, cover); err != nil {
				return "", err
			}
		}
	}

	if err := s.books.Replace(ctx, book); err != nil {
		return "", err
	}
	return uploadURL, nil
}

func (s *bookService) putCover(ctx context.Context, book *models.Book, cover *Upload) (*models.File, error) {
	key := coverKey(book.ID, book.Title)
	if err := s.store.Put(ctx, storage.Public, key, cover.ContentType, cover.Data); err != nil {
		return nil, err
	}
	return &models.File{ID: key, URL: s.store.PublicURL(key)}, nil
}

func (s *bookService) writeLocal(name string, data []byte) error {
	if err := os.MkdirAll(s.booksDir, 0o755); err != nil {
		return fmt.Errorf("create books dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.booksDir, filepath.Base(name)), data, 0o644); err != nil {
		return fmt.Errorf("write book file: %w", err)
	}
	return nil
}

func (s *bookService) Details(ctx context.Context, bookSlug string) (*BookDetails, error) {
	book, err := s.books.GetBySlug(ctx, bookSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d := &BookDetails{
		ID:              book.ID.Hex(),
		Title:           book.Title,
		Slug:            book.Slug,
		Description:     book.Description,
		Genre:           book.Genre,
		Language:        book.Language,
		PublicationName: book.PublicationName,
		PublishedAt:     book.PublishedAt.Format("2006-01-02"),
		Price:           book.Price.Display(),
		Cover:           book.CoverURL(),
		Rating:          book.Rating(),
		FileSize:        book.FileInfo.Size,
	}
	author, err := s.authors.GetByID(ctx, book.Author.Hex())
	switch {
	case err == nil:
		d.Author.ID, d.Author.Name, d.Author.Slug = author.ID.Hex(), author.Name, author.Slug
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}
	return d, nil
}

func (s *bookService) ByGenre(ctx context.Context, genre string) ([]BookSummary, error) {
	books, err := s.books.ListByGenre(ctx, genre, GenreListLimit)
	if err != nil {
		return nil, err
	}
	return summarizeAll(books), nil
}

func (s *bookService) purchased(ctx context.Context, ac *models.AuthContext, bookSlug string) (*models.Book, error) {
	book, err := s.books.GetBySlug(ctx, bookSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !ac.Owns(book.ID.Hex()) {
		return nil, ErrForbidden
	}
	return book, nil
}

func (s *bookService) Read(ctx context.Context, ac *models.AuthContext, bookSlug string) (*ReadResult, error) {
	book, err := s.purchased(ctx, ac, bookSlug)
	if err != nil {
		return nil, err
	}

	res := &ReadResult{}
	if book.UploadMethod == models.UploadMethodLocal {
		res.URL = "/book/file/" + book.Slug
	} else if res.URL, err = s.store.SignedDownloadURL(ctx, book.FileInfo.ID); err != nil {
		return nil, err
	}

	reader, err := bson.ObjectIDFromHex(ac.ID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	history, err := s.histories.Get(ctx, reader, book.ID)
	switch {
	case err == nil:
		res.Settings = &ReadingSettings{LastLocation: history.LastLocation, Highlights: history.Highlights}
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}
	return res, nil
}

func (s *bookService) LocalFile(ctx context.Context, ac *models.AuthContext, bookSlug string) (string, error) {
	book, err := s.purchased(ctx, ac, bookSlug)
	if err != nil {
		return "", err
	}
	if book.UploadMethod != models.UploadMethodLocal {
		return "", ErrNotFound
	}
	return filepath.Join(s.booksDir, filepath.Base(book.FileInfo.ID)), nil
}
