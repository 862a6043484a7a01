package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPrice(t *testing.T) {
	tests := []struct {
		category TicketCategory
		expected int
	}{
		{TicketCategoryAdult, 20},
		{TicketCategoryChild, 10},
		{TicketCategoryInfant, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			price, err := TicketPrice(tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestTicketPrice_InvalidType(t *testing.T) {
	_, err := TicketPrice(TicketCategory("INVALID_TYPE"))

	require.Error(t, err)
	assert.Equal(t, "Invalid ticket type: INVALID_TYPE", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidTicketType))

	var typeErr *InvalidTicketTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, TicketCategory("INVALID_TYPE"), typeErr.Category)
}

func TestPriceTable_ReturnsCopy(t *testing.T) {
	table := PriceTable()
	table[TicketCategoryAdult] = 999

	price, err := TicketPrice(TicketCategoryAdult)
	require.NoError(t, err)
	assert.Equal(t, 20, price)
	assert.Len(t, PriceTable(), 3)
}

func TestTicketCategory_OccupiesSeat(t *testing.T) {
	assert.True(t, TicketCategoryAdult.OccupiesSeat())
	assert.True(t, TicketCategoryChild.OccupiesSeat())
	assert.False(t, TicketCategoryInfant.OccupiesSeat())
	assert.False(t, TicketCategory("SENIOR").OccupiesSeat())
}

func TestTicketCategory_IsValid(t *testing.T) {
	for _, category := range Categories {
		assert.True(t, category.IsValid(), string(category))
	}
	assert.False(t, TicketCategory("adult").IsValid())
	assert.False(t, TicketCategory("").IsValid())
}

func TestNewTicketTypeRequest(t *testing.T) {
	tests := []struct {
		name     string
		category TicketCategory
		count    int
		wantErr  error
	}{
		{name: "valid adult", category: TicketCategoryAdult, count: 2},
		{name: "valid infant", category: TicketCategoryInfant, count: 1},
		{name: "zero count", category: TicketCategoryAdult, count: 0, wantErr: ErrInvalidTicketCount},
		{name: "negative count", category: TicketCategoryChild, count: -3, wantErr: ErrInvalidTicketCount},
		{name: "unknown category", category: "VIP", count: 1, wantErr: ErrInvalidTicketType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewTicketTypeRequest(tt.category, tt.count)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, req.Category)
			assert.Equal(t, tt.count, req.Count)
		})
	}
}
