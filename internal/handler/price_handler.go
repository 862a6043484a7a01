package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ticket-purchase/internal/dto"
	"github.com/prohmpiriya/ticket-purchase/pkg/response"
)

// PriceHandler serves the ticket price list
type PriceHandler struct {
	prices *dto.TicketPricesResponse
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(currency string) *PriceHandler {
	return &PriceHandler{prices: dto.NewTicketPricesResponse(currency)}
}

// List handles GET /ticket-prices
func (h *PriceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(h.prices))
}
