package domain

import (
	"errors"
	"fmt"
)

// TicketCategory is one of the fixed ticket categories sold by the venue
type TicketCategory string

const (
	TicketCategoryAdult  TicketCategory = "ADULT"
	TicketCategoryChild  TicketCategory = "CHILD"
	TicketCategoryInfant TicketCategory = "INFANT"
)

// MaxTicketsPerPurchase is the maximum number of tickets in a single purchase
const MaxTicketsPerPurchase = 20

var (
	// ErrInvalidTicketType is returned when a category is not in the price table
	ErrInvalidTicketType = errors.New("Invalid ticket type")
	// ErrInvalidTicketCount is returned when a ticket count is not positive
	ErrInvalidTicketCount = errors.New("Invalid ticket count")
)

// ticketPrices is the venue price table in whole currency units.
// It is never mutated after package initialisation.
var ticketPrices = map[TicketCategory]int{
	TicketCategoryAdult:  20,
	TicketCategoryChild:  10,
	TicketCategoryInfant: 0,
}

// Categories lists the ticket categories in display order
var Categories = []TicketCategory{
	TicketCategoryAdult,
	TicketCategoryChild,
	TicketCategoryInfant,
}

// IsValid returns true if the category has an entry in the price table
func (c TicketCategory) IsValid() bool {
	_, exists := ticketPrices[c]
	return exists
}

// OccupiesSeat returns true if a ticket of this category needs a seat.
// Infants sit on an adult's lap.
func (c TicketCategory) OccupiesSeat() bool {
	return c == TicketCategoryAdult || c == TicketCategoryChild
}

// TicketPrice returns the price of a single ticket of the given category
func TicketPrice(category TicketCategory) (int, error) {
	price, exists := ticketPrices[category]
	if !exists {
		return 0, &InvalidTicketTypeError{Category: category}
	}
	return price, nil
}

// PriceTable returns a copy of the price table
func PriceTable() map[TicketCategory]int {
	table := make(map[TicketCategory]int, len(ticketPrices))
	for category, price := range ticketPrices {
		table[category] = price
	}
	return table
}

// InvalidTicketTypeError reports a category outside the price table
type InvalidTicketTypeError struct {
	Category TicketCategory
}

func (e *InvalidTicketTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidTicketType.Error(), e.Category)
}

// Is makes errors.Is(err, ErrInvalidTicketType) match
func (e *InvalidTicketTypeError) Is(target error) bool {
	return target == ErrInvalidTicketType
}

// TicketTypeRequest asks for Count tickets of a single category
type TicketTypeRequest struct {
	Category TicketCategory `json:"type"`
	Count    int            `json:"count"`
}

// NewTicketTypeRequest creates a TicketTypeRequest, rejecting unknown
// categories and non-positive counts
func NewTicketTypeRequest(category TicketCategory, count int) (TicketTypeRequest, error) {
	if !category.IsValid() {
		return TicketTypeRequest{}, &InvalidTicketTypeError{Category: category}
	}
	if count <= 0 {
		return TicketTypeRequest{}, fmt.Errorf("%w for %s: %d", ErrInvalidTicketCount, category, count)
	}
	return TicketTypeRequest{Category: category, Count: count}, nil
}
