package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/ticket-purchase/internal/domain"
	"github.com/prohmpiriya/ticket-purchase/internal/dto"
	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
	"github.com/prohmpiriya/ticket-purchase/internal/reservation"
	"github.com/prohmpiriya/ticket-purchase/pkg/middleware"
	"github.com/prohmpiriya/ticket-purchase/pkg/response"
	"github.com/prohmpiriya/ticket-purchase/pkg/telemetry"
)

// Purchaser runs a ticket purchase
type Purchaser interface {
	Purchase(ctx context.Context, accountID string, requests []domain.TicketTypeRequest) (*purchase.Receipt, error)
}

// PurchaseHandler handles ticket purchase HTTP requests
type PurchaseHandler struct {
	purchaser Purchaser
	currency  string
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaser Purchaser, currency string) *PurchaseHandler {
	return &PurchaseHandler{
		purchaser: purchaser,
		currency:  currency,
	}
}

// Create handles POST /purchases. The authenticated account wins over the
// account_id in the body.
func (h *PurchaseHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body: "+err.Error()))
		return
	}

	accountID := req.AccountID
	if authenticated, ok := middleware.GetAccountID(c); ok {
		accountID = authenticated
	}

	span.SetAttributes(
		telemetry.AccountIDAttr(accountID),
		attribute.Int("purchase.lines", len(req.Tickets)),
	)

	receipt, err := h.purchaser.Purchase(ctx, accountID, req.ToDomain())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(dto.FromReceipt(receipt, h.currency)))
}

// handleError converts purchase errors to HTTP responses
func (h *PurchaseHandler) handleError(c *gin.Context, err error) {
	var perr *purchase.PurchaseError
	if !errors.As(err, &perr) {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to process purchase"))
		return
	}

	code := errorCode(perr)
	details := map[string]string{
		"purchase_id": perr.PurchaseID,
		"stage":       string(perr.Stage),
	}
	c.JSON(response.GetHTTPStatus(code), response.ErrorWithDetails(code, perr.Error(), details))
}

func errorCode(perr *purchase.PurchaseError) string {
	switch perr.Stage {
	case purchase.StagePayment:
		return response.ErrCodePaymentFailed
	case purchase.StageReservation:
		if errors.Is(perr, reservation.ErrNotEnoughSeats) || errors.Is(perr, reservation.ErrVenueNotFound) {
			return response.ErrCodeSeatReservationFailed
		}
		return response.ErrCodeSeatReservationUnavailable
	}

	switch {
	case errors.Is(perr, purchase.ErrTooManyTickets):
		return response.ErrCodeTicketLimitExceeded
	case errors.Is(perr, purchase.ErrNoTickets):
		return response.ErrCodeNoTicketsSelected
	case errors.Is(perr, purchase.ErrAdultRequired):
		return response.ErrCodeAdultTicketRequired
	case errors.Is(perr, domain.ErrInvalidTicketType):
		return response.ErrCodeInvalidTicketType
	default:
		return response.ErrCodeValidationFailed
	}
}
