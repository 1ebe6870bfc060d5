package models

import "testing"

func TestAverageRatingEmpty(t *testing.T) {
	p := &Perfume{}
	if got := p.AverageRating(); got != 0 {
		t.Fatalf("expected 0 for perfume without comments, got %v", got)
	}
}

func TestAverageRating(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"full spread", []int{1, 2, 3}, 2.0},
		{"single", []int{3}, 3.0},
		{"rounds to one decimal", []int{1, 2}, 1.5},
		{"rounds down", []int{1, 1, 2}, 1.3},
		{"rounds up", []int{2, 3, 3}, 2.7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Perfume{}
			for _, r := range tc.ratings {
				p.Comments = append(p.Comments, Comment{Rating: r})
			}
			if got := p.AverageRating(); got != tc.want {
				t.Fatalf("ratings %v: expected %v, got %v", tc.ratings, tc.want, got)
			}
		})
	}
}
