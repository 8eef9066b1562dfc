package domain

import (
	"math"
	"strings"
)

// SortField is an allow-listed campaign ordering key.
type SortField string

const (
	SortByName    SortField = "name"
	SortByAmount  SortField = "amount"
	SortByStart   SortField = "start"
	SortByEnd     SortField = "end"
	SortByStatus  SortField = "status"
	SortByCreated SortField = "created"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxPage is the largest page whose offset still fits in an int at any page size.
const MaxPage = math.MaxInt / MaxPageSize

// ParseSortField maps user input onto the allow-list. Anything unknown,
// including empty input, falls back to SortByCreated.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByName, SortByAmount, SortByStart, SortByEnd, SortByStatus, SortByCreated:
		return f
	}
	return SortByCreated
}

// ParseSortDescending returns false only for an explicit "asc".
func ParseSortDescending(s string) bool {
	return !strings.EqualFold(strings.TrimSpace(s), "asc")
}

// ClampPage keeps page numbers within [1, MaxPage].
func ClampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// ClampPageSize keeps the page size within [1, MaxPageSize].
func ClampPageSize(size int) int {
	switch {
	case size < 1:
		return 1
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// TotalPages is ceil(total/size), and 0 for an empty result set.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
