package common

import (
	"github.com/google/uuid"
)

// NewPageID generates a unique page ID with the "page_" prefix
// Format: page_<uuid>
func NewPageID() string {
	return "page_" + uuid.New().String()
}

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}
