package view

// Pageable is implemented by store.Paged.
type Pageable interface {
	Current() int
	TotalPages() int
	HasPrev() bool
	HasNext() bool
	PrevNumber() int
	NextNumber() int
}

// Pager feeds the pagination partial.
type Pager struct {
	BaseURL string
	Pageable
}

func NewPager(baseURL string, p Pageable) Pager {
	return Pager{BaseURL: baseURL, Pageable: p}
}
