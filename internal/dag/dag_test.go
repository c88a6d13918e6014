package dag

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_References(t *testing.T) {
	g := New()
	g.Reference("api", "db")
	g.Reference("api", "cache")
	g.Reference("worker", "db")
	g.Reference("api", "db")

	assert.Equal(t, []string{"api", "db", "cache", "worker"}, g.Names())
	assert.Equal(t, []string{"cache", "db"}, g.References("api"))
	assert.Equal(t, []string{"api", "worker"}, g.Referrers("db"))
	assert.Nil(t, g.References("db"))
	assert.Nil(t, g.References("unknown"))
	assert.Empty(t, g.Cycles())
}

func TestGraph_Cycles(t *testing.T) {
	testCases := []struct {
		name string
		refs [][2]string
		want [][]string
	}{
		{
			name: "self reference",
			refs: [][2]string{{"a", "a"}},
			want: [][]string{{"a"}},
		},
		{
			name: "mutual",
			refs: [][2]string{{"a", "b"}, {"b", "a"}},
			want: [][]string{{"a", "b"}},
		},
		{
			name: "ring of three with a tail",
			refs: [][2]string{{"x", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "two independent cycles",
			refs: [][2]string{{"a", "b"}, {"b", "a"}, {"m", "n"}, {"n", "m"}},
			want: [][]string{{"a", "b"}, {"m", "n"}},
		},
		{
			name: "diamond is acyclic",
			refs: [][2]string{{"top", "l"}, {"top", "r"}, {"l", "bottom"}, {"r", "bottom"}},
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			for _, r := range tc.refs {
				g.Reference(r[0], r[1])
			}
			if diff := cmp.Diff(tc.want, g.Cycles()); diff != "" {
				t.Errorf("Cycles() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGraph_ConcurrentReferences(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Reference("shared", "target")
			_ = g.Cycles()
		}()
	}
	wg.Wait()

	require.Len(t, g.Names(), 2)
	assert.Equal(t, []string{"shared"}, g.Referrers("target"))
}
