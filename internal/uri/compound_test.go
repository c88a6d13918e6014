package uri

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected *CompoundURI
	}{
		{
			name:     "scheme and name",
			raw:      "app:config/base.json",
			expected: &CompoundURI{Scheme: "app", Name: "config/base.json"},
		},
		{
			name:     "fragment",
			raw:      "app:config/base.json#services.db",
			expected: &CompoundURI{Scheme: "app", Name: "config/base.json", Fragment: "services.db"},
		},
		{
			name: "literal and uri parameters",
			raw:  "make:Client+timeout=5s+auth@named:credentials",
			expected: &CompoundURI{
				Scheme: "make",
				Name:   "Client",
				Parameters: map[string]*CompoundURI{
					"timeout": NewLiteral("5s"),
					"auth":    {Scheme: "named", Name: "credentials"},
				},
			},
		},
		{
			name: "nested bracketed uri",
			raw:  "make:+config@[dirmap:patterns+extra=1]",
			expected: &CompoundURI{
				Scheme: "make",
				Parameters: map[string]*CompoundURI{
					"config": {
						Scheme:     "dirmap",
						Name:       "patterns",
						Parameters: map[string]*CompoundURI{"extra": NewLiteral("1")},
					},
				},
			},
		},
		{
			name:     "escaped plus in name",
			raw:      "s:a%2Bb",
			expected: &CompoundURI{Scheme: "s", Name: "a+b"},
		},
		{
			name: "post message",
			raw:  "post:router#navigate+to=home",
			expected: &CompoundURI{
				Scheme:     "post",
				Name:       "router",
				Fragment:   "navigate",
				Parameters: map[string]*CompoundURI{"to": NewLiteral("home")},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Parse(tc.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, u); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{
		"no-scheme",
		":missing",
		"1abc:x",
		"make:x+broken",
		"make:x+p@[unclosed",
		"make:x+p@nested-without-scheme",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidURI)
		})
	}
}

func TestCompoundURI_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"app:config/base.json",
		"app:a.json#x.y",
		"make:Client+auth@named:credentials+timeout=5s",
		"make:+config@[dirmap:patterns+extra=1]",
		"s:a%2Bb",
	} {
		t.Run(raw, func(t *testing.T) {
			u := MustParse(raw)
			assert.Equal(t, raw, u.String())
			assert.Equal(t, u, MustParse(u.String()))
		})
	}
}

func TestSchemeOf(t *testing.T) {
	scheme, ok := SchemeOf("named:db")
	assert.True(t, ok)
	assert.Equal(t, "named", scheme)

	_, ok = SchemeOf("plain text: with colon")
	assert.False(t, ok)
	_, ok = SchemeOf("#root.ref")
	assert.False(t, ok)
}

func TestCompoundURI_Copy(t *testing.T) {
	u := MustParse("make:X+a@named:y")
	c := u.Copy()
	c.Parameters["a"].Name = "z"
	assert.Equal(t, "y", u.Parameters["a"].Name)
	assert.Equal(t, "make:Other+a@named:y", u.WithName("Other").String())
}
