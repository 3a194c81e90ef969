package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Paging(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		limit  int
		offset int
	}{
		{"zero value", Filter{}, DefaultPageSize, 0},
		{"third page", Filter{Page: 3, PageSize: 10}, 10, 20},
		{"oversized page", Filter{Page: 2, PageSize: 500}, MaxPageSize, MaxPageSize},
		{"negative page", Filter{Page: -4, PageSize: 5}, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.limit, tt.filter.Limit())
			assert.Equal(t, tt.offset, tt.filter.Offset())
		})
	}
}

func TestFilter_SearchPattern(t *testing.T) {
	assert.Empty(t, Filter{Search: "   "}.SearchPattern())
	assert.Equal(t, "%beach trip%", Filter{Search: " Beach Trip "}.SearchPattern())
}
