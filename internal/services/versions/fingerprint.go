package versions

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/folio/internal/models"
)

// Fingerprint returns the lowercase hex SHA-256 of the canonical encoding of
// a snapshot. The encoding is a JSON array of objects with sorted keys and
// unescaped non-ASCII text; array order is preserved, so the same lines in a
// different order fingerprint differently.
func Fingerprint(lines []models.SnapshotLine) (string, error) {
	if lines == nil {
		lines = []models.SnapshotLine{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(lines); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:]), nil
}
