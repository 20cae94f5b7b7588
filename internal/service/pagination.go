package service

import (
	"errors"
	"strconv"
	"strings"
)

// Page describes one page of a list. Number is 1-based.
type Page struct {
	Number   int
	NumPages int
	Size     int
	Total    int
}

// Paginate never fails: a missing, non-numeric or non-positive page falls
// back to page 1 and a page past the end falls back to the last page.
// An empty list has a single empty page.
func Paginate(total int, raw string, size int) Page {
	if size <= 0 {
		size = 1
	}
	numPages := (total + size - 1) / size
	if numPages < 1 {
		numPages = 1
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange) && n > 0:
		n = numPages
	case err != nil || n < 1:
		n = 1
	case n > numPages:
		n = numPages
	}

	return Page{Number: n, NumPages: numPages, Size: size, Total: total}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) Prev() int { return p.Number - 1 }

func (p Page) Next() int { return p.Number + 1 }
