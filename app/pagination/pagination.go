// Package pagination slices ordered listings into fixed-size pages.
//
// Page numbers are 1-based. A missing or malformed page number selects the
// first page and a number outside the valid range selects the last page, so
// a listing never fails because of the page parameter. An empty listing
// still has exactly one (empty) page.
package pagination

import "strconv"

// DefaultPerPage is the number of items shown on a listing page.
const DefaultPerPage = 10

// Page describes one page of a listing.
type Page struct {
	Number   int
	NumPages int
	Total    int
	PerPage  int
}

// New computes the page selected by requested for a listing of total items.
func New(total, perPage int, requested string) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	numPages := (total + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(requested)
	if err != nil {
		number = 1
	}
	if number < 1 || number > numPages {
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		Total:    total,
		PerPage:  perPage,
	}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the number of items on the page.
func (p Page) Limit() int {
	remaining := p.Total - p.Offset()
	if remaining < 0 {
		return 0
	}
	if remaining > p.PerPage {
		return p.PerPage
	}
	return remaining
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item, 0 when empty.
func (p Page) StartIndex() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based position of the last item, 0 when empty.
func (p Page) EndIndex() int {
	return p.Offset() + p.Limit()
}

// Range lists every page number, for rendering page links.
func (p Page) Range() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
