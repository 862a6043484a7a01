package dto

import (
	"time"

	"github.com/prohmpiriya/ticket-purchase/internal/domain"
	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
)

// TicketRequest is one line of a purchase request
type TicketRequest struct {
	Type  string `json:"type" binding:"required"`
	Count int    `json:"count"`
}

// PurchaseRequest represents a request to buy tickets. AccountID is only
// read when the request is not authenticated.
type PurchaseRequest struct {
	AccountID string          `json:"account_id"`
	Tickets   []TicketRequest `json:"tickets" binding:"dive"`
}

// ToDomain converts the ticket lines to domain requests. Categories and
// counts are passed through unchanged so that the purchase rules report them.
func (r *PurchaseRequest) ToDomain() []domain.TicketTypeRequest {
	requests := make([]domain.TicketTypeRequest, len(r.Tickets))
	for i, t := range r.Tickets {
		requests[i] = domain.TicketTypeRequest{
			Category: domain.TicketCategory(t.Type),
			Count:    t.Count,
		}
	}
	return requests
}

// TicketLineResponse is a priced ticket line
type TicketLineResponse struct {
	Type      string `json:"type"`
	Count     int    `json:"count"`
	UnitPrice int    `json:"unit_price"`
	Subtotal  int    `json:"subtotal"`
}

// TransitionResponse is one step of the purchase lifecycle
type TransitionResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseResponse represents a completed purchase
type PurchaseResponse struct {
	PurchaseID     string               `json:"purchase_id"`
	AccountID      string               `json:"account_id"`
	Tickets        []TicketLineResponse `json:"tickets"`
	TicketCount    int                  `json:"ticket_count"`
	TotalPrice     int                  `json:"total_price"`
	Currency       string               `json:"currency"`
	SeatsReserved  int                  `json:"seats_reserved"`
	PaymentRef     string               `json:"payment_ref"`
	ReservationRef string               `json:"reservation_ref"`
	Transitions    []TransitionResponse `json:"transitions,omitempty"`
	CompletedAt    time.Time            `json:"completed_at"`
}

// FromReceipt converts a purchase receipt to PurchaseResponse
func FromReceipt(r *purchase.Receipt, currency string) *PurchaseResponse {
	tickets := make([]TicketLineResponse, len(r.Tickets))
	for i, t := range r.Tickets {
		price, _ := domain.TicketPrice(t.Category)
		tickets[i] = TicketLineResponse{
			Type:      string(t.Category),
			Count:     t.Count,
			UnitPrice: price,
			Subtotal:  price * t.Count,
		}
	}

	transitions := make([]TransitionResponse, len(r.Transitions))
	for i, tr := range r.Transitions {
		transitions[i] = TransitionResponse{
			From:      string(tr.From),
			To:        string(tr.To),
			Timestamp: tr.Timestamp,
		}
	}

	return &PurchaseResponse{
		PurchaseID:     r.PurchaseID,
		AccountID:      r.AccountID,
		Tickets:        tickets,
		TicketCount:    r.TicketCount,
		TotalPrice:     r.TotalPrice,
		Currency:       currency,
		SeatsReserved:  r.SeatsReserved,
		PaymentRef:     r.PaymentRef,
		ReservationRef: r.ReservationRef,
		Transitions:    transitions,
		CompletedAt:    r.CompletedAt,
	}
}

// TicketPriceResponse is one row of the price list
type TicketPriceResponse struct {
	Type         string `json:"type"`
	Price        int    `json:"price"`
	OccupiesSeat bool   `json:"occupies_seat"`
}

// TicketPricesResponse is the venue price list
type TicketPricesResponse struct {
	Currency              string                `json:"currency"`
	MaxTicketsPerPurchase int                   `json:"max_tickets_per_purchase"`
	Prices                []TicketPriceResponse `json:"prices"`
}

// NewTicketPricesResponse builds the price list in display order
func NewTicketPricesResponse(currency string) *TicketPricesResponse {
	table := domain.PriceTable()
	prices := make([]TicketPriceResponse, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		prices = append(prices, TicketPriceResponse{
			Type:         string(category),
			Price:        table[category],
			OccupiesSeat: category.OccupiesSeat(),
		})
	}
	return &TicketPricesResponse{
		Currency:              currency,
		MaxTicketsPerPurchase: domain.MaxTicketsPerPurchase,
		Prices:                prices,
	}
}

// HealthResponse reports service and dependency health
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
