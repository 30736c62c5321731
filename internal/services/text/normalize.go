// Package text normalizes transcription text before it is hashed or stored.
package text

import (
	"fmt"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ternarybob/folio/internal/models"
)

// Normalize returns s in Unicode canonical composition (NFC)
func Normalize(s string) string {
	if s == "" {
		return s
	}
	return norm.NFC.String(s)
}

// NormalizePtr normalizes an optional field; blank values become nil
func NormalizePtr(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	n := Normalize(*s)
	return &n
}

// NormalizeLines returns a copy of lines with text and notes normalized
func NormalizeLines(lines []models.TranscriptionLineInput) []models.TranscriptionLineInput {
	out := make([]models.TranscriptionLineInput, len(lines))
	for i, l := range lines {
		out[i] = l
		out[i].Text = Normalize(l.Text)
		out[i].Notes = NormalizePtr(l.Notes)
	}
	return out
}

// IsNormalized reports whether s is already in NFC
func IsNormalized(s string) bool {
	return norm.NFC.IsNormalString(s)
}

// DetectNormalizationIssues describes a non-NFC input, or returns "" when
// the text is fine
func DetectNormalizationIssues(s string) string {
	if s == "" {
		return ""
	}
	nfc := norm.NFC.String(s)
	if nfc != norm.NFD.String(s) && s != nfc {
		return fmt.Sprintf("Text not in NFC form. Length: %d -> %d", len([]rune(s)), len([]rune(nfc)))
	}
	return ""
}

// StripDiacritics removes combining marks such as Hebrew points (nikkud)
// and returns the result in NFC.
func StripDiacritics(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("failed to strip diacritics: %w", err)
	}
	return out, nil
}
