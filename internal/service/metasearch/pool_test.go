package metasearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstancePool_Choose(t *testing.T) {
	pool := NewInstancePool([]string{"a.example", "b.example", "c.example"})

	t.Run("pinned is returned verbatim", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			assert.Equal(t, "https://private.example", pool.Choose("https://private.example"))
		}
	})

	t.Run("unpinned picks a pool member", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			assert.Contains(t, []string{"a.example", "b.example", "c.example"}, pool.Choose(""))
		}
	})

	t.Run("uniform over members", func(t *testing.T) {
		seen := map[string]int{}
		for i := 0; i < 3000; i++ {
			seen[pool.Choose("")]++
		}
		assert.Len(t, seen, 3)
		for _, n := range seen {
			assert.InDelta(t, 1000, n, 200)
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		assert.Equal(t, "", NewInstancePool(nil).Choose(""))
	})
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		instance string
		want     string
	}{
		{name: "bare host", instance: "searx.be", want: "https://searx.be"},
		{name: "https url", instance: "https://search.qwksearch.com/", want: "https://search.qwksearch.com"},
		{name: "http url", instance: "http://127.0.0.1:8888", want: "http://127.0.0.1:8888"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseURL(tt.instance))
		})
	}
}

func TestPublicInstances(t *testing.T) {
	assert.Len(t, PublicInstances, 63)
}
