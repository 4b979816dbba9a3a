package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil stays nil", nil, nil},
		{"empty stays empty", []string{}, []string{}},
		{"trims and lowercases", []string{"  Author ", "REVIEWER"}, []string{"author", "reviewer"}},
		{"case-insensitive duplicates keep first", []string{"paper_chair", "Paper_Chair", "admin"}, []string{"paper_chair", "admin"}},
		{"blanks dropped", []string{"", "   ", "author"}, []string{"author"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeFold(tt.input))
		})
	}
}
