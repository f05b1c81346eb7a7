// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pages

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is an inclusive, 1-based span of pages.
type PageRange struct {
	First int
	Last  int
}

// Len returns the number of pages in r.
func (r PageRange) Len() int { return r.Last - r.First + 1 }

// String renders r as "3" or "4-6".
func (r PageRange) String() string {
	if r.First == r.Last {
		return strconv.Itoa(r.First)
	}
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// ParseRanges parses a comma separated list of pages and ranges such as
// "1-5,6-10" and checks every range lies within 1..pages.
func ParseRanges(s string, pages int) ([]PageRange, error) {
	var out []PageRange
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		r, err := parsePageRange(field)
		if err != nil {
			return nil, err
		}
		if r.Last > pages {
			return nil, fmt.Errorf("%w: %s exceeds %d pages", ErrInvalidRange, field, pages)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q names no pages", ErrInvalidRange, s)
	}
	return out, nil
}

// parsePageRange parses "N" or "A-B" with 1 <= A <= B.
func parsePageRange(s string) (PageRange, error) {
	first, last, isRange := strings.Cut(s, "-")
	a, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	b := a
	if isRange {
		if b, err = strconv.Atoi(strings.TrimSpace(last)); err != nil {
			return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
	}
	if a < 1 || b < a {
		return PageRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return PageRange{First: a, Last: b}, nil
}
