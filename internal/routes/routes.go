package routes

import (
	"github.com/gin-gonic/gin"

	"digiread/internal/authz"
	"digiread/internal/handlers"
	"digiread/internal/middleware"
	"digiread/internal/services"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Verify   *handlers.VerifyHandler
	User     *handlers.UserHandler
	Author   *handlers.AuthorHandler
	Book     *handlers.BookHandler
	Review   *handlers.ReviewHandler
	History  *handlers.HistoryHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Payment  *handlers.PaymentHandler
}

func SetupRoutes(r *gin.Engine, authService services.AuthService, h Handlers) *gin.Engine {
	session := middleware.SessionAuth(authService)

	// ---- public
	r.POST("/auth/generate-link", h.Auth.GenerateLink)
	r.GET("/auth/verify", h.Verify.Verify)
	r.POST("/auth/exchange-token", h.Auth.ExchangeToken)
	r.GET("/author/:id", h.Author.Details)
	r.GET("/author/books/:authorId", h.Author.Books)
	r.GET("/book/details/:slug", h.Book.Details)
	r.GET("/book/by-genre/:genre", h.Book.ByGenre)
	r.POST("/webhook/payment", h.Payment.Webhook)

	// AUTH
	auth := r.Group("/auth", session)
	{
		auth.GET("/profile", h.User.Profile)
		auth.PUT("/profile", h.User.UpdateProfile)
		auth.POST("/logout", h.User.Logout)
	}

	// AUTHORS
	author := r.Group("/author", session)
	{
		author.POST("/register", h.Author.Register)
		author.PATCH("", middleware.RequireAuthor(), h.Author.Update)
	}

	// BOOKS
	book := r.Group("/book", session)
	{
		book.POST("/create", middleware.RequireAuthor(), h.Book.Create)
		book.PATCH("", middleware.RequireAuthor(), h.Book.Update)
		book.GET("/read/:slug", h.Book.Read)
		book.GET("/file/:slug", h.Book.File)
	}

	// REVIEWS
	review := r.Group("/review", session, middleware.RequireRoles(authz.Readers...))
	{
		review.POST("/add", middleware.RequirePurchased(), h.Review.Add)
		review.GET("/:bookId", h.Review.Get)
	}

	// HISTORY
	r.POST("/history", session, middleware.RequireRoles(authz.Readers...), middleware.RequirePurchased(), h.History.Update)

	// CART
	cart := r.Group("/cart", session)
	{
		cart.PUT("", h.Cart.Update)
		cart.GET("", h.Cart.Get)
		cart.POST("/clear", h.Cart.Clear)
	}

	r.POST("/checkout", session, h.Checkout.Checkout)

	return r
}
