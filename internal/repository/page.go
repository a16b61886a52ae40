package repository

// Page is a LIMIT/OFFSET window over an ordered result set.
type Page struct {
	Limit  int
	Offset int
}

// All is a window covering every row.
var All = Page{}

// Unbounded reports whether the window applies no limit.
func (p Page) Unbounded() bool {
	return p.Limit <= 0
}
