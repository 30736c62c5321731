package imports

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/text"
)

var (
	pageMarker = regexp.MustCompile(`(?i)^Page\s+(\d+)\s*$`)

	folioPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\d+[abrvאבגד]?$`),                       // 304b, 45v
		regexp.MustCompile(`(?i)^(fol\.?|f\.?|folio)\s*\d+[abrvאבגד]?$`), // fol. 34, f. 12v
		regexp.MustCompile(`^דף\s+[א-ת]+$`),                              // דף א
	}
)

const maxIdentifierLength = 20

// ParseResult is the outcome of ParseText
type ParseResult struct {
	Pages []models.ParsedPage

	// SkippedIdentifier is the folio line dropped from an unmarked file
	SkippedIdentifier string
}

// IsPageIdentifier reports whether a line looks like a folio or page label
func IsPageIdentifier(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxIdentifierLength {
		return false
	}
	for _, re := range folioPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// ParseText splits plain text into pages. "Page N" lines start a new page;
// blank lines before a page's first line are dropped, as are blank lines at
// its end. A file without markers becomes page 1 made of its non-blank
// lines, optionally without a leading folio identifier.
func ParseText(content string, skipPageIdentifier bool) *ParseResult {
	result := &ParseResult{Pages: []models.ParsedPage{}}
	rawLines := strings.Split(content, "\n")

	var current *models.ParsedPage
	flush := func() {
		if current == nil {
			return
		}
		current.Lines = trimTrailingBlank(current.Lines)
		result.Pages = append(result.Pages, *current)
	}

	for _, raw := range rawLines {
		line := strings.TrimRightFunc(raw, unicode.IsSpace)

		if m := pageMarker.FindStringSubmatch(line); m != nil {
			flush()
			n, err := strconv.Atoi(m[1])
			if err != nil {
				// Digits that overflow int cannot name a page
				current = nil
				continue
			}
			current = &models.ParsedPage{PageNumber: n, Lines: []models.TranscriptionLineInput{}}
			continue
		}

		if current == nil {
			continue
		}
		if line == "" && len(current.Lines) == 0 {
			continue
		}
		current.Lines = append(current.Lines, models.TranscriptionLineInput{
			LineNumber: len(current.Lines),
			Text:       text.Normalize(line),
		})
	}
	flush()

	if len(result.Pages) > 0 {
		return result
	}

	var nonEmpty []string
	for _, raw := range rawLines {
		if strings.TrimSpace(raw) != "" {
			nonEmpty = append(nonEmpty, strings.TrimRightFunc(raw, unicode.IsSpace))
		}
	}
	if len(nonEmpty) == 0 {
		return result
	}

	if skipPageIdentifier && IsPageIdentifier(nonEmpty[0]) {
		result.SkippedIdentifier = strings.TrimSpace(nonEmpty[0])
		nonEmpty = nonEmpty[1:]
	}

	page := models.ParsedPage{PageNumber: 1, Lines: make([]models.TranscriptionLineInput, len(nonEmpty))}
	for i, line := range nonEmpty {
		page.Lines[i] = models.TranscriptionLineInput{LineNumber: i, Text: text.Normalize(line)}
	}
	result.Pages = append(result.Pages, page)
	return result
}

func trimTrailingBlank(lines []models.TranscriptionLineInput) []models.TranscriptionLineInput {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1].Text) == "" {
		end--
	}
	return lines[:end]
}
