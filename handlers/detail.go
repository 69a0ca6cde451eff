package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProductDetail(c *gin.Context) {
	view, err := h.detail.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, "Failed to open product", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DetailAdd(c *gin.Context) {
	id := c.Param("id")
	if err := h.detail.Add(c.Request.Context(), id); err != nil {
		abortWithError(c, "Failed to add product to cart", err)
		return
	}
	logChange(c, "product added to cart", id)
	h.GetProductDetail(c)
}

func (h *Handler) DetailIncrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.detail.Increase(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to increase quantity", err)
		return
	}
	quantityResponse(c, id, q)
}

func (h *Handler) DetailDecrease(c *gin.Context) {
	id := c.Param("id")
	q, err := h.detail.Decrease(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, "Failed to decrease quantity", err)
		return
	}
	quantityResponse(c, id, q)
}
