package nav

// Crumb is one breadcrumb link.
type Crumb struct {
	Title string
	URL   string
}

type Breadcrumbs []Crumb

// Add returns b with one more crumb.
func (b Breadcrumbs) Add(title, url string) Breadcrumbs {
	return append(b, Crumb{Title: title, URL: url})
}
