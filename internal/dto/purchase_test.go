package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ticket-purchase/internal/domain"
	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
)

func TestPurchaseRequest_ToDomain(t *testing.T) {
	req := &PurchaseRequest{
		AccountID: "acct-1",
		Tickets: []TicketRequest{
			{Type: "ADULT", Count: 2},
			{Type: "child", Count: -1},
		},
	}

	got := req.ToDomain()

	require.Len(t, got, 2)
	assert.Equal(t, domain.TicketCategoryAdult, got[0].Category)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, domain.TicketCategory("child"), got[1].Category, "categories are not normalised")
	assert.Equal(t, -1, got[1].Count)
}

func TestPurchaseRequest_ToDomainEmpty(t *testing.T) {
	req := &PurchaseRequest{}
	assert.Empty(t, req.ToDomain())
}

func TestFromReceipt(t *testing.T) {
	completed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	receipt := &purchase.Receipt{
		PurchaseID: "purchase-1",
		AccountID:  "acct-1",
		Tickets: []domain.TicketTypeRequest{
			{Category: domain.TicketCategoryAdult, Count: 2},
			{Category: domain.TicketCategoryChild, Count: 1},
			{Category: domain.TicketCategoryInfant, Count: 1},
		},
		TicketCount:    4,
		TotalPrice:     50,
		SeatsReserved:  3,
		PaymentRef:     "pay-1",
		ReservationRef: "res-1",
		Transitions: []purchase.Transition{
			{From: purchase.StateCreated, To: purchase.StateValidated, Timestamp: completed},
		},
		CompletedAt: completed,
	}

	resp := FromReceipt(receipt, "gbp")

	assert.Equal(t, "purchase-1", resp.PurchaseID)
	assert.Equal(t, 50, resp.TotalPrice)
	assert.Equal(t, "gbp", resp.Currency)
	assert.Equal(t, 3, resp.SeatsReserved)
	require.Len(t, resp.Tickets, 3)
	assert.Equal(t, TicketLineResponse{Type: "ADULT", Count: 2, UnitPrice: 20, Subtotal: 40}, resp.Tickets[0])
	assert.Equal(t, TicketLineResponse{Type: "CHILD", Count: 1, UnitPrice: 10, Subtotal: 10}, resp.Tickets[1])
	assert.Equal(t, TicketLineResponse{Type: "INFANT", Count: 1, UnitPrice: 0, Subtotal: 0}, resp.Tickets[2])
	require.Len(t, resp.Transitions, 1)
	assert.Equal(t, "CREATED", resp.Transitions[0].From)
	assert.Equal(t, "VALIDATED", resp.Transitions[0].To)
	assert.Equal(t, completed, resp.CompletedAt)
}

func TestNewTicketPricesResponse(t *testing.T) {
	resp := NewTicketPricesResponse("gbp")

	assert.Equal(t, "gbp", resp.Currency)
	assert.Equal(t, 20, resp.MaxTicketsPerPurchase)
	assert.Equal(t, []TicketPriceResponse{
		{Type: "ADULT", Price: 20, OccupiesSeat: true},
		{Type: "CHILD", Price: 10, OccupiesSeat: true},
		{Type: "INFANT", Price: 0, OccupiesSeat: false},
	}, resp.Prices)
}
