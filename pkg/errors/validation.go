package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds node labels and stored document names.
const maxNameLength = 128

// ValidateNodeName validates a node label as used inside template rows.
//
// Labels are whitespace-separated tokens in a row, and rows of an inline
// template are separated by '/' or ';', so none of those may appear in a
// label. The rules are:
//   - No empty names
//   - No whitespace or control characters
//   - No row separators ('/' and ';')
//   - Maximum length of 128 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDocument, "node name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidDocument, "node name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDocument, "node name %q contains whitespace or control characters", name)
		}
	}

	if strings.ContainsAny(name, "/;") {
		return New(ErrCodeInvalidDocument, "node name %q contains a row separator", name)
	}

	return nil
}

// documentNameRegex matches names accepted by the document store.
var documentNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentName validates the name a document is stored under.
// It rejects names that could be used for path traversal or injection attacks.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No path traversal sequences (..)
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "document name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "document name too long (max %d characters)", maxNameLength)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "document name cannot contain path traversal sequences (..)")
	}

	if !documentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid document name: %q", name)
	}

	return nil
}
