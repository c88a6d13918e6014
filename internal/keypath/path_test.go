// internal/keypath/path_test.go
package keypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a.b.c", "db.users[0].posts[15]", "http-client.headers[0]", "-patterns.Base"} {
		t.Run(raw, func(t *testing.T) {
			p, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_Equal(t *testing.T) {
	p1 := MustParse("a.b[0]")
	p2 := MustParse("a.b[0]")
	p3 := MustParse("a.b[1]")

	assert.True(t, p1.Equal(p2))
	assert.False(t, p1.Equal(p3))
	assert.False(t, p1.Equal(nil))
	assert.True(t, (*Path)(nil).Equal(nil))
	assert.Equal(t, "", (*Path)(nil).String())
}

func TestPath_Lookup(t *testing.T) {
	data := map[string]any{
		"server": map[string]any{
			"ports": []any{80.0, 443.0},
			"name":  "edge",
		},
		"labels": map[string]string{"tier": "web"},
		"matrix": []any{[]any{"x", "y"}},
	}

	testCases := []struct {
		path     string
		expected any
		found    bool
	}{
		{"server.name", "edge", true},
		{"server.ports[1]", 443.0, true},
		{"server.ports.0", 80.0, true},
		{"labels.tier", "web", true},
		{"matrix[0].1", "y", true},
		{"server.ports[5]", nil, false},
		{"server.missing", nil, false},
		{"server.name.deeper", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			v, ok := MustParse(tc.path).Lookup(data)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestPath_Head(t *testing.T) {
	head, rest := MustParse("a.b.c").Head()
	assert.Equal(t, NewSegment("a"), head)
	assert.Equal(t, "b.c", rest.String())

	head, rest = MustParse("x[2]").Head()
	assert.Equal(t, NewSegmentWithIndex("x", 2), head)
	assert.Nil(t, rest)
}
