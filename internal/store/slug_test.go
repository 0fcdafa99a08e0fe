package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple name",
			in:   "Acme Motors",
			want: "acme-motors",
		},
		{
			name: "punctuation runs collapse",
			in:   "Bob's  Cars & Trucks!!",
			want: "bob-s-cars-trucks",
		},
		{
			name: "leading and trailing separators stripped",
			in:   "--Hello World--",
			want: "hello-world",
		},
		{
			name: "already clean",
			in:   "dealer-42",
			want: "dealer-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	got := slugify(strings.Repeat("abc ", 40))

	assert.Len(t, got, maxSlugLen)
}

func TestSlugifyFallsBackForEmptyResult(t *testing.T) {
	for _, in := range []string{"", "!!!", "   ", "---"} {
		got := slugify(in)

		assert.NotEmpty(t, got)
		assert.Regexp(t, `^[0-9a-z]+$`, got)
	}
}

func TestSlugSuffix(t *testing.T) {
	s := slugSuffix()

	assert.Len(t, s, slugSuffixLen+1)
	assert.Regexp(t, `^-[a-z0-9]+$`, s)
}
