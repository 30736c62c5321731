package exports

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ternarybob/folio/internal/models"
)

// PageText is the transcription of one page in reading order
type PageText struct {
	PageNumber int
	Lines      []models.TranscriptionLine
}

// Text renders pages as plain text. Each page is optionally preceded by a
// "Page N" header and a blank line and always followed by a blank line.
// Line numbers are right-aligned to width 3; confidence is shown as a
// rounded percentage. It returns the number of bytes written.
func Text(w io.Writer, pages []PageText, opts models.ExportOptions) (int64, error) {
	var out []string
	for _, page := range pages {
		if opts.IncludePageHeaders {
			out = append(out, fmt.Sprintf("Page %d", page.PageNumber), "")
		}
		for _, line := range page.Lines {
			s := line.Text
			if opts.IncludeLineNumbers {
				s = fmt.Sprintf("%3d. %s", line.LineNumber, s)
			}
			if opts.IncludeConfidence && line.Confidence != nil {
				s = fmt.Sprintf("%s [%.0f%%]", s, *line.Confidence*100)
			}
			out = append(out, s)
		}
		out = append(out, "")
	}

	content := applyLineEnding(strings.Join(out, "\n"), opts.LineEnding)

	cw := &countingWriter{w: w}
	enc, err := encoderFor(opts.Encoding)
	if err != nil {
		return 0, err
	}
	tw := transform.NewWriter(cw, enc.NewEncoder())
	if _, err := io.WriteString(tw, content); err != nil {
		return cw.n, fmt.Errorf("failed to write export: %w", err)
	}
	if err := tw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to flush export: %w", err)
	}
	return cw.n, nil
}

// applyLineEnding converts all newlines, including CR and CRLF inside line
// text, to the requested ending
func applyLineEnding(s string, ending models.LineEnding) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	switch ending {
	case models.LineEndingCRLF:
		return strings.ReplaceAll(s, "\n", "\r\n")
	case models.LineEndingCR:
		return strings.ReplaceAll(s, "\n", "\r")
	}
	return s
}

func encoderFor(e models.TextEncoding) (encoding.Encoding, error) {
	switch e {
	case models.EncodingUTF8:
		return unicode.UTF8, nil
	case models.EncodingUTF8BOM, "":
		return unicode.UTF8BOM, nil
	case models.EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	}
	return nil, fmt.Errorf("unsupported encoding: %s", e)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
