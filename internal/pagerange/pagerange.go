// Package pagerange turns the free-text "pages to scrape" field into a
// bounded, ascending list of page numbers.
//
// Accepted forms:
//
//	"3"     → [3]
//	"1-10"  → [1 2 … 10]
//	"1 - 5" → [1 2 3 4 5]   (whitespace around numbers is ignored)
package pagerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxSpan is the largest allowed end-start of a range (101 pages).
const MaxSpan = 100

// Thresholds above which Advise returns a warning.
const (
	SlowThreshold  = 20
	LargeThreshold = 50
)

var (
	ErrInvalidRangeFormat = errors.New("invalid page range format")
	ErrInvalidPageNumber  = errors.New("invalid page number")
	ErrRangeTooLarge      = fmt.Errorf("page range too large (max %d pages)", MaxSpan)
)

// Parse validates input and expands it into page numbers.
func Parse(input string) ([]int, error) {
	trimmed := strings.TrimSpace(input)

	if !strings.Contains(trimmed, "-") {
		page, err := strconv.Atoi(trimmed)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPageNumber, input)
		}
		return []int{page}, nil
	}

	startStr, endStr, _ := strings.Cut(trimmed, "-")
	start, errStart := strconv.Atoi(strings.TrimSpace(startStr))
	end, errEnd := strconv.Atoi(strings.TrimSpace(endStr))
	if errStart != nil || errEnd != nil || start < 1 || end < start {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, input)
	}
	if end-start > MaxSpan {
		return nil, fmt.Errorf("%w: %q", ErrRangeTooLarge, input)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages, nil
}

// Advise returns the soft warning shown before a long scrape, or "".
func Advise(pages []int) string {
	switch n := len(pages); {
	case n > LargeThreshold:
		return "Warning: Large page ranges may take a long time to process."
	case n > SlowThreshold:
		return fmt.Sprintf("Will scrape %d pages. This may take a while.", n)
	}
	return ""
}
