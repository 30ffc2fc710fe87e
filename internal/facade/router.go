package facade

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Router assembles the local API. The surface mirrors the store
// operations one to one; anything stateful lives behind the handlers.
func Router(
	authHandler *AuthHandler,
	cartHandler *CartHandler,
	wishlistHandler *WishlistHandler,
	productHandler *ProductHandler,
	checkoutHandler *CheckoutHandler,
	logger *zap.Logger,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/principal", authHandler.Principal)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Post("/signup", authHandler.SignUp)
			r.Post("/confirm", authHandler.ConfirmSignUp)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.List)
			r.Post("/{product_id}/toggle", wishlistHandler.Toggle)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
			r.Post("/", productHandler.Create)
			r.Put("/{product_id}", productHandler.Update)
			r.Delete("/{product_id}", productHandler.Delete)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Submit)
			r.Get("/orders", checkoutHandler.Orders)
		})
	})

	return r
}
