package transport

import (
	"errors"
	"testing"
)

func TestNormalizeLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", limit: 0, offset: 0, wantLimit: 20, wantOffset: 0},
		{name: "negative limit", limit: -3, offset: 0, wantLimit: 20, wantOffset: 0},
		{name: "capped", limit: 500, offset: 0, wantLimit: 100, wantOffset: 0},
		{name: "negative offset", limit: 10, offset: -1, wantLimit: 10, wantOffset: 0},
		{name: "passthrough", limit: 25, offset: 50, wantLimit: 25, wantOffset: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := NormalizeLimitOffset(tt.limit, tt.offset)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestPageToLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
	}{
		{name: "first page default size", page: 0, pageSize: 0, wantLimit: 20, wantOffset: 0},
		{name: "third page", page: 3, pageSize: 20, wantLimit: 20, wantOffset: 40},
		{name: "second page of ten", page: 2, pageSize: 10, wantLimit: 10, wantOffset: 10},
		{name: "negative page", page: -1, pageSize: 10, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := PageToLimitOffset(tt.page, tt.pageSize)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseBearer(t *testing.T) {
	for _, good := range []string{"Bearer abc.def.ghi", "bearer abc.def.ghi", "BEARER abc.def.ghi", "  Bearer   abc.def.ghi  "} {
		tok, err := ParseBearer(good)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", good, err)
			continue
		}
		if tok != "abc.def.ghi" {
			t.Errorf("%q: got token %q", good, tok)
		}
	}

	for _, bad := range []string{"", "Bearer", "Bearer a b", "Basic abc", "abc.def.ghi"} {
		if _, err := ParseBearer(bad); !errors.Is(err, ErrNoBearer) {
			t.Errorf("%q: expected ErrNoBearer, got %v", bad, err)
		}
	}
}
