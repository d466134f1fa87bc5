// Package support carries the Brazilian document and phone validation used
// by organization and subject records.
package support

import "regexp"

var (
	phoneRegex    = regexp.MustCompile(`^\([0-9]{2}\) [0-9]{4,5}-[0-9]{4}$`)
	nonDigitRegex = regexp.MustCompile(`[^0-9]`)
)

// DocumentType names the accepted organization document kinds.
const (
	DocumentTypeCPF  = "cpf"
	DocumentTypeCNPJ = "cnpj"
)

// ValidatePhone checks the "(NN) NNNN-NNNN" / "(NN) NNNNN-NNNN" format.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateDocument validates a document string against its declared type.
func ValidateDocument(documentType, document string) bool {
	switch documentType {
	case DocumentTypeCPF:
		return ValidateCPF(document)
	case DocumentTypeCNPJ:
		return ValidateCNPJ(document)
	default:
		return false
	}
}

// ValidateCPF checks the CPF check digits. Punctuation is ignored.
func ValidateCPF(cpf string) bool {
	digits := toDigits(cpf)
	if len(digits) != 11 || allEqual(digits) {
		return false
	}
	if digits[9] != checkDigit(digits[:9], 10) {
		return false
	}
	return digits[10] == checkDigit(digits[:10], 11)
}

// ValidateCNPJ checks the CNPJ check digits. Punctuation is ignored.
func ValidateCNPJ(cnpj string) bool {
	digits := toDigits(cnpj)
	if len(digits) != 14 || allEqual(digits) {
		return false
	}
	firstWeights := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	if digits[12] != weightedCheckDigit(digits[:12], firstWeights) {
		return false
	}
	return digits[13] == weightedCheckDigit(digits[:13], secondWeights)
}

func toDigits(s string) []int {
	stripped := nonDigitRegex.ReplaceAllString(s, "")
	digits := make([]int, len(stripped))
	for i, c := range stripped {
		digits[i] = int(c - '0')
	}
	return digits
}

// allEqual rejects degenerate sequences like 000.000.000-00, which satisfy
// the check-digit arithmetic but are not valid documents.
func allEqual(digits []int) bool {
	for _, d := range digits {
		if d != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit computes a CPF check digit with descending weights starting at
// firstWeight.
func checkDigit(digits []int, firstWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (firstWeight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// weightedCheckDigit computes a CNPJ check digit with its fixed weight
// table.
func weightedCheckDigit(digits []int, weights []int) int {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
