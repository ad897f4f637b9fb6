package budget

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrcrawler/pkg/errors"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		keywords []string
		want     []Quota
	}{
		{"cat and dog", 5, []string{"cat", "dog"}, []Quota{{"cat", 3}, {"dog", 2}}},
		{"even split", 6, []string{"a", "b", "c"}, []Quota{{"a", 2}, {"b", 2}, {"c", 2}}},
		{"fewer than keywords", 2, []string{"a", "b", "c"}, []Quota{{"a", 1}, {"b", 1}, {"c", 0}}},
		{"zero limit", 0, []string{"a", "b"}, []Quota{{"a", 0}, {"b", 0}}},
		{"duplicates kept", 3, []string{"a", "a"}, []Quota{{"a", 2}, {"a", 1}}},
		{"no keywords no limit", 0, nil, []Quota{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.limit, tt.keywords)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllocateInvalidInput(t *testing.T) {
	_, err := Allocate(5, nil)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))

	_, err = Allocate(-1, []string{"a"})
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
}

func TestAllocateSumAndSpread(t *testing.T) {
	for n := 1; n <= 9; n++ {
		keywords := make([]string, n)
		for i := range keywords {
			keywords[i] = fmt.Sprintf("k%d", i)
		}
		for limit := 0; limit <= 60; limit++ {
			quotas, err := Allocate(limit, keywords)
			require.NoError(t, err)
			require.Len(t, quotas, n)
			assert.Equal(t, limit, Total(quotas))

			lo, hi := quotas[0].Count, quotas[0].Count
			for i, q := range quotas {
				assert.Equal(t, keywords[i], q.Keyword)
				lo, hi = min(lo, q.Count), max(hi, q.Count)
				if i > 0 {
					assert.LessOrEqual(t, q.Count, quotas[i-1].Count, "earlier keywords get the remainder")
				}
			}
			assert.LessOrEqual(t, hi-lo, 1)
		}
	}
}
