package app

import "strings"

// NormalizeAnswer trims s and collapses every run of whitespace to one space.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AnswersMatch compares a submitted answer with the canonical one after
// normalization. The comparison is exact and case-sensitive.
func AnswersMatch(submitted, correct string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(correct)
}
