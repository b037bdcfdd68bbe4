package store

import "math"

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 25

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// MaxOffset bounds the row offset of any page.
const MaxOffset = math.MaxInt32

// NewPage clamps number to at least 1 and size to DefaultPerPage when it is
// not positive. Numbers whose offset would pass MaxOffset are pulled back to
// the last page that fits.
func NewPage(number, size int) Page {
	if size < 1 {
		size = DefaultPerPage
	}
	if size > MaxOffset {
		size = MaxOffset
	}
	if last := MaxOffset/size + 1; number > last {
		number = last
	}
	if number < 1 {
		number = 1
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int  { return NewPage(p.Number, p.Size).Size }
func (p Page) Offset() int { n := NewPage(p.Number, p.Size); return (n.Number - 1) * n.Size }

// Paged is one page of results and the total row count.
type Paged[T any] struct {
	Items []T
	Page  Page
	Total int
}

func (p Paged[T]) TotalPages() int {
	size := p.Page.Limit()
	if p.Total == 0 {
		return 1
	}
	return (p.Total + size - 1) / size
}

func (p Paged[T]) HasPrev() bool { return p.Page.Number > 1 }
func (p Paged[T]) HasNext() bool { return p.Page.Number < p.TotalPages() }

func (p Paged[T]) PrevNumber() int { return p.Page.Number - 1 }
func (p Paged[T]) NextNumber() int { return p.Page.Number + 1 }

// Current is the 1-based number of this page.
func (p Paged[T]) Current() int { return p.Page.Number }
