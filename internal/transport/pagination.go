// Package transport holds the small pieces shared by the HTTP and gRPC
// surfaces: pagination window normalization and bearer token parsing.
package transport

const (
	// DefaultPageSize applies when the caller does not choose one.
	DefaultPageSize = 20

	// MaxPageSize caps any caller-chosen window.
	MaxPageSize = 100
)

// NormalizeLimitOffset applies the shared window policy to a raw
// limit/offset pair: missing or non-positive limits fall back to
// DefaultPageSize, limits above MaxPageSize are capped, and negative
// offsets clamp to zero.
func NormalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PageToLimitOffset converts a 1-based page/page_size pair into the
// limit/offset window the service speaks. Non-positive pages mean the
// first page; a zero page size means the default.
func PageToLimitOffset(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
