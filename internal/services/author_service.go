package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/repositories"
)

type AuthorInput struct {
	Name        string
	About       string
	SocialLinks []string
}

type AuthorDetails struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	About       string        `json:"about"`
	SocialLinks []string      `json:"socialLinks"`
	Books       []BookSummary `json:"books"`
}

type AuthorBook struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type AuthorService interface {
	Register(ctx context.Context, ac *models.AuthContext, in AuthorInput) (*models.Profile, error)
	Update(ctx context.Context, ac *models.AuthContext, in AuthorInput) error
	Details(ctx context.Context, id string) (*AuthorDetails, error)
	Books(ctx context.Context, authorID string) ([]AuthorBook, error)
}

type authorService struct {
	authors repositories.AuthorRepository
	users   repositories.UserRepository
	books   repositories.BookRepository
	log     logging.Logger
}

func NewAuthorService(authors repositories.AuthorRepository, users repositories.UserRepository, books repositories.BookRepository, log logging.Logger) AuthorService {
	return &authorService{authors: authors, users: users, books: books, log: log.With("component", "author")}
}

func (s *authorService) Register(ctx context.Context, ac *models.AuthContext, in AuthorInput) (*models.Profile, error) {
	if !ac.SignedUp {
		return nil, fmt.Errorf("%w: user must be signed up before registering as author", ErrUnauthorized)
	}
	if ac.AuthorID != "" {
		return nil, fmt.Errorf("%w: already registered as author", ErrInvalidInput)
	}
	userID, err := bson.ObjectIDFromHex(ac.ID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	author := &models.Author{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		About:       strings.TrimSpace(in.About),
		SocialLinks: in.SocialLinks,
	}
	author.Slug = slug.Make(author.Name + " " + author.ID.Hex())
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, err
	}

	user, err := s.users.PromoteToAuthor(ctx, ac.ID, author.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "author registered", "user_id", ac.ID, "author_id", author.ID.Hex())
	profile := user.Profile()
	return &profile, nil
}

func (s *authorService) Update(ctx context.Context, ac *models.AuthContext, in AuthorInput) error {
	err := s.authors.Update(ctx, ac.AuthorID, strings.TrimSpace(in.Name), strings.TrimSpace(in.About), in.SocialLinks)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *authorService) Details(ctx context.Context, id string) (*AuthorDetails, error) {
	author, err := s.authors.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	books, err := s.books.ListByIDs(ctx, author.Books)
	if err != nil {
		return nil, err
	}
	links := author.SocialLinks
	if links == nil {
		links = []string{}
	}
	return &AuthorDetails{
		ID:          author.ID.Hex(),
		Name:        author.Name,
		About:       author.About,
		SocialLinks: links,
		Books:       summarizeAll(books),
	}, nil
}

func (s *authorService) Books(ctx context.Context, authorID string) ([]AuthorBook, error) {
	author, err := s.authors.GetByID(ctx, authorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	books, err := s.books.ListByIDs(ctx, author.Books)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorBook, 0, len(books))
	for _, b := range books {
		out = append(out, AuthorBook{ID: b.ID.Hex(), Title: b.Title, Slug: b.Slug})
	}
	return out, nil
}
