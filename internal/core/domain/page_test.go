package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		page  PageRequest
		valid bool
	}{
		{"first page", PageRequest{Page: 1, PageSize: 10}, true},
		{"max size", PageRequest{Page: 3, PageSize: MaxPageSize}, true},
		{"page zero", PageRequest{Page: 0, PageSize: 10}, false},
		{"size zero", PageRequest{Page: 1, PageSize: 0}, false},
		{"size too large", PageRequest{Page: 1, PageSize: MaxPageSize + 1}, false},
		{"last page", PageRequest{Page: MaxPage, PageSize: MaxPageSize}, true},
		{"page too large", PageRequest{Page: MaxPage + 1, PageSize: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			}
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, PageRequest{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt / 100 * 3 / 2, PageSize: 100}.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageSize, PageRequest{Page: MaxPage, PageSize: MaxPageSize}.Offset())
}

func TestPageRequest_Window(t *testing.T) {
	tests := []struct {
		name       string
		page       PageRequest
		n          int
		start, end int
	}{
		{"full first page", PageRequest{Page: 1, PageSize: 2}, 3, 0, 2},
		{"partial last page", PageRequest{Page: 2, PageSize: 2}, 3, 2, 3},
		{"past the end", PageRequest{Page: 5, PageSize: 2}, 3, 3, 3},
		{"empty list", PageRequest{Page: 1, PageSize: 10}, 0, 0, 0},
		{"huge page", PageRequest{Page: math.MaxInt / 100 * 3 / 2, PageSize: 100}, 3, 3, 3},
		{"max int page", PageRequest{Page: math.MaxInt, PageSize: 2}, 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.page.Window(tt.n)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
