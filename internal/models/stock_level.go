package models

import (
	"fmt"
	"strconv"
	"strings"
)

// StockLevel summarizes how much of an item's capacity remains
type StockLevel string

const (
	StockGood   StockLevel = "good"
	StockMedium StockLevel = "medium"
	StockLow    StockLevel = "low"
)

const (
	lowStockRatio    = 0.02
	mediumStockRatio = 0.50
)

// StockRange is the parsed form of a "min/max" capacity descriptor.
type StockRange struct {
	Min int
	Max int
}

// ParseStockRange parses descriptors such as "10/100".
func ParseStockRange(s string) (StockRange, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return StockRange{}, fmt.Errorf("stock range %q: expected min/max", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return StockRange{}, fmt.Errorf("stock range %q: bad minimum: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return StockRange{}, fmt.Errorf("stock range %q: bad maximum: %w", s, err)
	}
	return StockRange{Min: lo, Max: hi}, nil
}

func (r StockRange) String() string {
	return strconv.Itoa(r.Min) + "/" + strconv.Itoa(r.Max)
}

// ClassifyStockLevel derives the stock level from the current stock and the
// maximum in a "min/max" descriptor. Only the maximum takes part: at or below
// 2% of it is low, at or below half is medium. A missing, zero or non-numeric
// maximum yields medium.
func ClassifyStockLevel(current int, minMax string) StockLevel {
	parts := strings.Split(minMax, "/")
	if len(parts) < 2 {
		return StockMedium
	}
	ceiling, err := leadingInt(parts[1])
	if err != nil || ceiling == 0 {
		return StockMedium
	}
	c := float64(current)
	switch {
	case c <= float64(ceiling)*lowStockRatio:
		return StockLow
	case c <= float64(ceiling)*mediumStockRatio:
		return StockMedium
	default:
		return StockGood
	}
}

// leadingInt reads the integer prefix of s, so "40 units" reads as 40.
func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	return strconv.Atoi(s[:end])
}
