package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetListing(c *gin.Context) {
	c.JSON(http.StatusOK, h.listing.View())
}

func (h *Handler) ReloadListing(c *gin.Context) {
	if err := h.listing.Load(c.Request.Context()); err != nil {
		abortWithError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, h.listing.View())
}

func (h *Handler) ListingAdd(c *gin.Context) {
	id := c.Param("id")
	if err := h.listing.Add(c.Request.Context(), id); err != nil {
		abortWithError(c, "Failed to add product to cart", err)
		return
	}
	logChange(c, "product added to cart", id)
	c.JSON(http.StatusOK, h.listing.View())
}

func (h *Handler) ListingIncrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.listing.Increase(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to increase quantity", err)
		return
	}
	quantityResponse(c, id, q)
}

func (h *Handler) ListingDecrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.listing.Decrease(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to decrease quantity", err)
		return
	}
	quantityResponse(c, id, q)
}
