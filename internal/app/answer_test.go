package app

import "testing"

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{name: "surrounding spaces", submitted: " 食べる ", correct: "食べる", want: true},
		{name: "internal run", submitted: "a  b", correct: "a b", want: true},
		{name: "missing space", submitted: "ab", correct: "a b", want: false},
		{name: "ideographic space", submitted: "わたし　は", correct: "わたし は", want: true},
		{name: "tabs and newlines", submitted: "\tを\n", correct: "を", want: true},
		{name: "case sensitive", submitted: "Desu", correct: "desu", want: false},
		{name: "different kana", submitted: "は", correct: "が", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnswersMatch(tt.submitted, tt.correct); got != tt.want {
				t.Fatalf("AnswersMatch(%q, %q) = %v, want %v", tt.submitted, tt.correct, got, tt.want)
			}
		})
	}
}
