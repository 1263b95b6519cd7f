package postgres

import "testing"

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "ATP", want: "%ATP%"},
		{query: "100%", want: `%100\%%`},
		{query: "a%b_c\\", want: `%a\%b\_c\\%`},
		{query: "", want: "%%"},
	}
	for _, tt := range tests {
		if got := containsPattern(tt.query); got != tt.want {
			t.Fatalf("containsPattern(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
