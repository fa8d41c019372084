package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"first page", Filter{Page: 1, PageSize: 20}, 0},
		{"third page", Filter{Page: 3, PageSize: 20}, 40},
		{"zero page", Filter{Page: 0, PageSize: 20}, 0},
		{"unpaged", Filter{Page: 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Offset())
		})
	}
}

func TestFilter_Clamp(t *testing.T) {
	f := Filter{PageSize: 500}.Clamp()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)

	f = Filter{Page: 2}.Clamp()
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.True(t, f.Paged())
	assert.False(t, Filter{}.Paged())
}
