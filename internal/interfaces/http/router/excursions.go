package router

import (
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/handler"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/middleware"
)

// ExcursionRoutes builds the /excursions route group. Request bodies of the
// POST routes are capped at maxBody bytes; review pages are marked noindex.
func ExcursionRoutes(h *handler.ExcursionHandler, maxBody int64) *DomainGroup {
	if maxBody <= 0 {
		maxBody = middleware.DefaultBodyLimit
	}
	bodyLimit := middleware.BodyLimit(maxBody)

	g := NewDomainGroup("excursions", "/excursions")
	g.GET("/search", h.Search)
	g.POST("/availability", bodyLimit, h.CheckAvailability)

	bookings := g.Group("bookings", "/bookings")
	bookings.POST("", bodyLimit, h.BookCart)
	bookings.GET("/:ref/status", h.CartStatus)

	products := g.Group("products", "/products")
	products.GET("/:code", h.GetProduct)
	products.GET("/:code/reviews", middleware.NoIndex(), h.GetReviews)

	destinations := g.Group("destinations", "/destinations")
	destinations.GET("", h.GetDestinations)
	destinations.GET("/:id", h.GetDestination)

	return g
}
