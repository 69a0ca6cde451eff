package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart/internal/catalog"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.review.View())
}

func (h *Handler) GetCartItems(c *gin.Context) {
	lines, err := h.cart.GetAll(c.Request.Context())
	if err != nil {
		abortWithError(c, "Failed to fetch cart items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines})
}

// AddToCart accepts a full product record, for clients that did not load it through the listing.
func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var product catalog.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.cart.AddToCart(c.Request.Context(), product); err != nil {
		abortWithError(c, "Failed to add product to cart", err)
		return
	}
	logChange(c, "product added to cart", product.ID)

	line, err := h.cart.GetLine(c.Request.Context(), product.ID)
	if err != nil || line == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Product added to cart successfully"})
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) CartIncrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.review.Increase(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to increase quantity", err)
		return
	}
	quantityResponse(c, id, q)
}

func (h *Handler) CartDecrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.review.Decrease(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to decrease quantity", err)
		return
	}
	quantityResponse(c, id, q)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id := c.Param("id")
	if err := h.review.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, "Failed to remove product from cart", err)
		return
	}
	logChange(c, "product removed from cart", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.review.Clear(c.Request.Context()); err != nil {
		abortWithError(c, "Failed to clear cart", err)
		return
	}
	logChange(c, "cart cleared", "")
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetTotal(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"total": h.cart.GetTotal(c.Request.Context())})
}

func (h *Handler) GetCartedIDs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.cart.GetCartedIDs(c.Request.Context()).Sorted()})
}

func (h *Handler) CompleteOrder(c *gin.Context) {
	h.review.CompleteOrder(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"message": "Order completion is not available"})
}
