// internal/keypath/parser_test.go
package keypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectErr    bool
		expectedPath *Path
	}{
		{
			name: "simple path",
			raw:  "a.b.c",
			expectedPath: &Path{
				Segments: []Segment{NewSegment("a"), NewSegment("b"), NewSegment("c")},
			},
		},
		{
			name: "multi-level path with index",
			raw:  "db.users[0].posts[15]",
			expectedPath: &Path{
				Segments: []Segment{NewSegment("db"), NewSegmentWithIndex("users", 0), NewSegmentWithIndex("posts", 15)},
			},
		},
		{
			name: "reserved keys",
			raw:  "-types.&type",
			expectedPath: &Path{
				Segments: []Segment{NewSegment("-types"), NewSegment("&type")},
			},
		},
		{
			name: "numeric segment",
			raw:  "items.0",
			expectedPath: &Path{
				Segments: []Segment{NewSegment("items"), NewSegment("0")},
			},
		},
		{
			name:      "error - empty path segment",
			raw:       "a..b",
			expectErr: true,
		},
		{
			name:      "error - invalid index",
			raw:       "a.b[x]",
			expectErr: true,
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - dangling bracket",
			raw:       "a.b[",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPath, p)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("a..b") })
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, "a.b", Join("a", "b"))
	assert.Equal(t, "a.b[2]", JoinIndex("a.b", 2))
}
