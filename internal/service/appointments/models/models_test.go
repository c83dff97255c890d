package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewListMeta(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		limit  uint64
		offset uint64
		want   ListMeta
	}{
		{name: "no limit", total: 7, want: ListMeta{Total: 7, Page: 1, TotalPages: 1}},
		{name: "empty without limit", total: 0, want: ListMeta{Page: 1}},
		{name: "first page", total: 7, limit: 3, want: ListMeta{Total: 7, Limit: 3, Page: 1, TotalPages: 3}},
		{name: "last partial page", total: 7, limit: 3, offset: 6, want: ListMeta{Total: 7, Limit: 3, Offset: 6, Page: 3, TotalPages: 3}},
		{name: "exact pages", total: 6, limit: 3, offset: 3, want: ListMeta{Total: 6, Limit: 3, Offset: 3, Page: 2, TotalPages: 2}},
		{name: "offset past the end", total: 2, limit: 5, offset: 10, want: ListMeta{Total: 2, Limit: 5, Offset: 10, Page: 3, TotalPages: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewListMeta(tt.total, tt.limit, tt.offset))
		})
	}
}
