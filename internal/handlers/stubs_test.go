package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"digiread/internal/logging"
	"digiread/internal/middleware"
	"digiread/internal/models"
	"digiread/internal/services"
	"digiread/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Register()
}

type stubAuthService struct {
	generateLink func(email string) error
	verify       func(token, userID string) (*services.VerifyResult, error)
	exchange     func(credential string) (*models.Profile, error)
}

func (s *stubAuthService) GenerateLink(_ context.Context, email string) error {
	return s.generateLink(email)
}

func (s *stubAuthService) Verify(_ context.Context, token, userID string) (*services.VerifyResult, error) {
	return s.verify(token, userID)
}

func (s *stubAuthService) Exchange(_ context.Context, credential string) (*models.Profile, error) {
	return s.exchange(credential)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*models.AuthContext, error) {
	return nil, services.ErrUnauthorized
}

type stubUserService struct {
	update func(userID, name string, avatar *services.Upload) (*models.Profile, error)
}

func (s *stubUserService) UpdateProfile(_ context.Context, userID, name string, avatar *services.Upload) (*models.Profile, error) {
	return s.update(userID, name, avatar)
}

type stubBookService struct {
	create    func(in services.BookInput, cover, file *services.Upload) (string, error)
	update    func(slug string, in services.BookInput, cover, file *services.Upload) (string, error)
	details   func(slug string) (*services.BookDetails, error)
	read      func(slug string) (*services.ReadResult, error)
	localFile func(slug string) (string, error)
}

func (s *stubBookService) Create(_ context.Context, _ *models.AuthContext, in services.BookInput, cover, file *services.Upload) (string, error) {
	return s.create(in, cover, file)
}

func (s *stubBookService) Update(_ context.Context, _ *models.AuthContext, slug string, in services.BookInput, cover, file *services.Upload) (string, error) {
	return s.update(slug, in, cover, file)
}

func (s *stubBookService) Details(_ context.Context, slug string) (*services.BookDetails, error) {
	return s.details(slug)
}

func (s *stubBookService) ByGenre(context.Context, string) ([]services.BookSummary, error) {
	return []services.BookSummary{}, nil
}

func (s *stubBookService) Read(_ context.Context, _ *models.AuthContext, slug string) (*services.ReadResult, error) {
	return s.read(slug)
}

func (s *stubBookService) LocalFile(_ context.Context, _ *models.AuthContext, slug string) (string, error) {
	return s.localFile(slug)
}

type stubReviewService struct {
	added []string
	get   func(bookID string) (*models.Review, error)
}

func (s *stubReviewService) Add(_ context.Context, userID, bookID string, rating int, content string) error {
	s.added = append(s.added, userID+":"+bookID)
	return nil
}

func (s *stubReviewService) Get(_ context.Context, _ string, bookID string) (*models.Review, error) {
	return s.get(bookID)
}

type stubCheckoutService struct {
	checkout func(cartID string) (string, error)
}

func (s *stubCheckoutService) Checkout(_ context.Context, _ *models.AuthContext, cartID string) (string, error) {
	return s.checkout(cartID)
}

type stubPaymentService struct {
	got []services.Notification
	err error
}

func (s *stubPaymentService) HandleNotification(_ context.Context, n services.Notification) error {
	s.got = append(s.got, n)
	return s.err
}

// withIdentity stands in for middleware.SessionAuth.
func withIdentity(ac *models.AuthContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ac != nil {
			middleware.SetIdentity(c, ac)
		}
		c.Next()
	}
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logging.Discard()))
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var reader = &models.AuthContext{
	Profile: models.Profile{ID: "64b7f0c2a1b2c3d4e5f60718", Email: "ann@x.com", Name: "Ann", Role: models.RoleUser, SignedUp: true},
	Books:   []string{"64b7f0c2a1b2c3d4e5f60719"},
}
