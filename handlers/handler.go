package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart/internal/auth"
	"shopcart/internal/cart"
	"shopcart/internal/screen"
	"shopcart/middleware"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

type Handler struct {
	cart    screen.Cart
	listing *screen.Listing
	detail  *screen.Detail
	review  *screen.CartReview
}

func NewHandler(c screen.Cart, listing *screen.Listing, detail *screen.Detail, review *screen.CartReview) *Handler {
	return &Handler{
		cart:    c,
		listing: listing,
		detail:  detail,
		review:  review,
	}
}

// API builds the router. ginMode is applied when it names a gin mode; any
// other value runs in debug mode.
func API(endpointPrefix, ginMode string, a *auth.Keys, corsOrigins []string, h *Handler) *gin.Engine {

	switch ginMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(ginMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	m := middleware.NewMid(a)
	//apply middleware to all the endpoints using r.Use
	r.Use(middleware.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))
	r.GET("/ping", healthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.Use(m.Authentication())

		listing := v1.Group("/listing")
		listing.GET("", h.GetListing)
		listing.POST("/reload", h.ReloadListing)
		listing.POST("/items/:id", h.ListingAdd)
		listing.POST("/items/:id/increase", h.ListingIncrease)
		listing.POST("/items/:id/decrease", h.ListingDecrease)

		products := v1.Group("/products")
		products.GET("/:id", h.GetProductDetail)
		products.POST("/:id/cart", h.DetailAdd)
		products.POST("/:id/increase", h.DetailIncrease)
		products.POST("/:id/decrease", h.DetailDecrease)

		c := v1.Group("/cart")
		c.GET("", h.GetCart)
		c.GET("/items", h.GetCartItems)
		c.POST("/items", h.AddToCart)
		c.POST("/items/:id/increase", h.CartIncrease)
		c.POST("/items/:id/decrease", h.CartDecrease)
		c.DELETE("/items/:id", h.RemoveFromCart)
		c.DELETE("", h.ClearCart)
		c.GET("/total", h.GetTotal)
		c.GET("/ids", h.GetCartedIDs)
		c.POST("/complete", h.CompleteOrder)
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	slog.Debug("healthCheck handler", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// abortWithError maps cart and screen errors to an HTTP status.
func abortWithError(c *gin.Context, msg string, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, screen.ErrUnknownProduct):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidProduct):
		status = http.StatusBadRequest
	case errors.Is(err, cart.ErrClosed):
		status = http.StatusServiceUnavailable
	}

	slog.Error(msg, slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()),
		slog.Int("Status Code", status))
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// subjectOf returns the session subject the authentication middleware put on
// the request, or "" when the API runs without auth.
func subjectOf(c *gin.Context) string {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}

// logChange records an accepted cart mutation with the session that made it.
func logChange(c *gin.Context, msg, productID string) {
	slog.Info(msg, slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)),
		slog.String(logkey.Subject, subjectOf(c)), slog.String(logkey.ProductID, productID))
}

func quantityResponse(c *gin.Context, productID string, q int32) {
	logChange(c, "cart quantity changed", productID)
	c.JSON(http.StatusOK, gin.H{"id": productID, "quantity": q, "removed": q == 0})
}
