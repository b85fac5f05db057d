package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/handler"
	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/offer"
	"github.com/knostijr/BE-coderr/internal/order"
	"github.com/knostijr/BE-coderr/internal/review"
	"github.com/knostijr/BE-coderr/internal/stats"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AccountService *account.Service
	AccountRepo    account.Repository
	OfferRepo      offer.Repository
	OrderRepo      order.Repository
	ReviewRepo     review.Repository
	Aggregator     *stats.Aggregator
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	accountHandler := handler.NewAccountHandler(deps.AccountService)
	profileHandler := handler.NewProfileHandler(deps.AccountRepo)
	offerHandler := handler.NewOfferHandler(deps.OfferRepo)
	orderHandler := handler.NewOrderHandler(deps.OrderRepo, deps.OfferRepo, deps.AccountRepo)
	reviewHandler := handler.NewReviewHandler(deps.ReviewRepo, deps.AccountRepo)
	baseInfoHandler := handler.NewBaseInfoHandler(deps.Aggregator)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.AccountService))

		r.Post("/registration", accountHandler.Register)
		r.Post("/login", accountHandler.Login)

		// Open per the platform contract: offer reads and statistics.
		r.Get("/offers", offerHandler.List)
		r.Get("/offers/{id}", offerHandler.GetByID)
		r.Get("/base-info", baseInfoHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/profile/{id}", profileHandler.Get)
			r.Patch("/profile/{id}", profileHandler.Update)
			r.Get("/profiles/business", profileHandler.ListBusiness)
			r.Get("/profiles/customer", profileHandler.ListCustomer)

			r.Post("/offers", offerHandler.Create)
			r.Patch("/offers/{id}", offerHandler.Update)
			r.Delete("/offers/{id}", offerHandler.Delete)
			r.Get("/offerdetails/{id}", offerHandler.GetDetail)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Create)
			r.Patch("/orders/{id}", orderHandler.UpdateStatus)
			r.Delete("/orders/{id}", orderHandler.Delete)
			r.Get("/order-count/{id}", orderHandler.Count)
			r.Get("/completed-order-count/{id}", orderHandler.CompletedCount)

			r.Get("/reviews", reviewHandler.List)
			r.Post("/reviews", reviewHandler.Create)
			r.Patch("/reviews/{id}", reviewHandler.Update)
			r.Delete("/reviews/{id}", reviewHandler.Delete)
		})
	})

	return r
}
