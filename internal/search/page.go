package search

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Window turns a 1-based page and a page size into a from/size pair.
func Window(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
