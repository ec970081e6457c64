package domain

// MaxPageSize is the server-side cap on the limit parameter for all
// list and search endpoints, regardless of what the client requests.
const MaxPageSize = 20

// PaginatedResult is the shared pagination envelope. NextOffset is set
// iff the underlying query produced more than limit rows (over-fetch by
// one); it is then offset+limit.
type PaginatedResult[T any] struct {
	Results    []T
	NextOffset *int
}

// ClampLimit normalizes a client-requested limit into (0, MaxPageSize].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Paginate applies the over-fetch-by-one convention to rows fetched with
// limit+1: it truncates to limit and computes the next offset.
func Paginate[T any](rows []T, offset, limit int) PaginatedResult[T] {
	res := PaginatedResult[T]{Results: rows}
	if len(rows) > limit {
		next := offset + limit
		res.Results = rows[:limit]
		res.NextOffset = &next
	}
	return res
}
