package main

import "testing"

func TestIsWeakSecret(t *testing.T) {
	cases := []struct {
		secret string
		weak   bool
	}{
		{secret: "short", weak: true},
		{secret: "please-change-me-0123456789abcdefghijkl", weak: true},
		{secret: "Q8f3k2LmZ0pR7sT1vW4xY6zA9bC5dE2gH", weak: false},
	}
	for _, tc := range cases {
		if got := isWeakSecret(tc.secret); got != tc.weak {
			t.Fatalf("isWeakSecret(%q) want %v got %v", tc.secret, tc.weak, got)
		}
	}
}
