package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Offset int
	Limit  int
}

// Page is a slice of results plus the size of the whole filtered set.
type Page[T any] struct {
	Count int64 `json:"count"`
	Items []T   `json:"items"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps offset to zero and applies NormalizeLimit.
func Normalize(p Params) Params {
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Map converts the items of a page while keeping its count.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Count: page.Count, Items: make([]U, 0, len(page.Items))}
	for _, item := range page.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
