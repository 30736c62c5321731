package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/models"
)

func texts(lines []models.TranscriptionLineInput) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestParseTextWithPageMarkers(t *testing.T) {
	content := "Page 1\n\nfirst\n\nsecond\n\nPAGE 2\r\nthird\r\n"

	result := ParseText(content, true)
	require.Len(t, result.Pages, 2)

	assert.Equal(t, 1, result.Pages[0].PageNumber)
	assert.Equal(t, []string{"first", "", "second"}, texts(result.Pages[0].Lines))
	for i, l := range result.Pages[0].Lines {
		assert.Equal(t, i, l.LineNumber)
	}

	assert.Equal(t, 2, result.Pages[1].PageNumber)
	assert.Equal(t, []string{"third"}, texts(result.Pages[1].Lines))
	assert.Empty(t, result.SkippedIdentifier)
}

func TestParseTextIgnoresLinesBeforeFirstMarker(t *testing.T) {
	result := ParseText("preamble\nPage 4\nbody", true)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 4, result.Pages[0].PageNumber)
	assert.Equal(t, []string{"body"}, texts(result.Pages[0].Lines))
}

func TestParseTextWithoutMarkers(t *testing.T) {
	content := "304b\nבראשית ברא\n\n  \nאלהים  \n"

	result := ParseText(content, true)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 1, result.Pages[0].PageNumber)
	assert.Equal(t, []string{"בראשית ברא", "אלהים"}, texts(result.Pages[0].Lines))
	assert.Equal(t, "304b", result.SkippedIdentifier)

	result = ParseText(content, false)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, []string{"304b", "בראשית ברא", "אלהים"}, texts(result.Pages[0].Lines))
	assert.Empty(t, result.SkippedIdentifier)
}

func TestParseTextNormalizes(t *testing.T) {
	result := ParseText("Page 1\ncafe\u0301", true)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "caf\u00e9", result.Pages[0].Lines[0].Text)
}

func TestParseTextEmpty(t *testing.T) {
	assert.Empty(t, ParseText("", true).Pages)
	assert.Empty(t, ParseText("\n \n\t\n", true).Pages)
}

func TestIsPageIdentifier(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"304b", true},
		{"45v", true},
		{"12R", true},
		{"7", true},
		{"304ב", true},
		{"fol. 34", true},
		{"f. 12v", true},
		{"folio 34b", true},
		{"Fol.5", true},
		{"דף א", true},
		{"דף  יב", true},
		{"  45v  ", true},
		{"", false},
		{"Hello", false},
		{"12 lines", false},
		{"123456789012345678901", false},
		{"דף 3", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPageIdentifier(tt.line), tt.line)
	}
}
