package utils

import (
	"regexp"
)

var nonDigit = regexp.MustCompile(`\D`)

var (
	firstCheckWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondCheckWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits removes all non-numeric characters
func OnlyDigits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// CleanCNPJ removes all non-numeric characters from CNPJ
func CleanCNPJ(cnpj string) string {
	return OnlyDigits(cnpj)
}

// FormatCNPJ formats a 14 digit CNPJ as XX.XXX.XXX/XXXX-XX. Other lengths are
// returned unchanged.
func FormatCNPJ(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return cnpj
	}

	return cleaned[:2] + "." + cleaned[2:5] + "." + cleaned[5:8] + "/" + cleaned[8:12] + "-" + cleaned[12:14]
}

// IsValidCNPJ validates CNPJ check digits
func IsValidCNPJ(cnpj string) bool {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 || isAllSameDigit(cleaned) {
		return false
	}

	digits := make([]int, 14)
	for i := 0; i < 14; i++ {
		digits[i] = int(cleaned[i] - '0')
	}

	return checkDigit(digits[:12], firstCheckWeights) == digits[12] &&
		checkDigit(digits[:13], secondCheckWeights) == digits[13]
}

// NormalizeCNPJ returns the formatted CNPJ and whether it is valid. Invalid
// input gives "".
func NormalizeCNPJ(cnpj string) (string, bool) {
	if !IsValidCNPJ(cnpj) {
		return "", false
	}
	return FormatCNPJ(cnpj), true
}

// CompleteCNPJ appends the two check digits to a 12 digit base
func CompleteCNPJ(base string) string {
	cleaned := CleanCNPJ(base)
	if len(cleaned) != 12 {
		return ""
	}

	digits := make([]int, 13)
	for i := 0; i < 12; i++ {
		digits[i] = int(cleaned[i] - '0')
	}
	digits[12] = checkDigit(digits[:12], firstCheckWeights)
	second := checkDigit(digits, secondCheckWeights)

	return cleaned + string(rune('0'+digits[12])) + string(rune('0'+second))
}

func isAllSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

func checkDigit(digits []int, weights []int) int {
	sum := 0
	for i, digit := range digits {
		sum += digit * weights[i]
	}

	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
