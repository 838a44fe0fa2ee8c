// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 4000
	MaxContentLength     = 2000

	// Agent name limits (stricter than general names)
	MinAgentNameLength = 2
	MaxAgentNameLength = 32
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a name is valid.
// Names must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// agentNameRegex matches names with only Unicode letters and single spaces between words.
var agentNameRegex = regexp.MustCompile(`^[\p{L}]+( [\p{L}]+)*$`)

// ValidateAgentName checks that an agent name is valid.
// Agent names have stricter rules than general names:
// - Letters and spaces only (no numbers, no special characters)
// - Length: 2-32 characters
// - No leading/trailing or consecutive spaces
func ValidateAgentName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if name != strings.TrimSpace(name) {
		return &ValidationError{Field: "name", Message: "cannot have leading or trailing spaces"}
	}
	if strings.Contains(name, "  ") {
		return &ValidationError{Field: "name", Message: "cannot have consecutive spaces"}
	}
	if len(name) < MinAgentNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at least %d characters", MinAgentNameLength)}
	}
	if len(name) > MaxAgentNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxAgentNameLength)}
	}
	if !agentNameRegex.MatchString(name) {
		return &ValidationError{Field: "name", Message: "must contain letters and spaces only"}
	}
	return nil
}

// NormalizeAgentName converts an agent name to Initial Caps format.
// Trims whitespace, collapses consecutive spaces, capitalizes the first
// letter of each word and lowercases the rest.
func NormalizeAgentName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		if word != "" {
			runes := []rune(strings.ToLower(word))
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		}
	}
	return strings.Join(words, " ")
}

// ValidateDescription checks that a description is valid.
// Descriptions may be empty, must be valid UTF-8, no control characters
// (except newline/tab), and within length limit.
func ValidateDescription(desc string) error {
	if desc == "" {
		return nil // Description may be empty
	}
	if !utf8.ValidString(desc) {
		return &ValidationError{Field: "description", Message: "must be valid UTF-8"}
	}
	if len(desc) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("exceeds maximum length of %d", MaxDescriptionLength)}
	}
	if hasControlCharsExceptWhitespace(desc) {
		return &ValidationError{Field: "description", Message: "cannot contain control characters (except newline/tab)"}
	}
	return nil
}

// ValidateContent checks that event content is valid.
func ValidateContent(content string) error {
	if content == "" {
		return &ValidationError{Field: "content", Message: "cannot be empty"}
	}
	if !utf8.ValidString(content) {
		return &ValidationError{Field: "content", Message: "must be valid UTF-8"}
	}
	if len(content) > MaxContentLength {
		return &ValidationError{Field: "content", Message: fmt.Sprintf("exceeds maximum length of %d", MaxContentLength)}
	}
	return nil
}

// hasControlChars returns true if the string contains control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// hasControlCharsExceptWhitespace returns true if the string contains control characters
// other than newline, carriage return, and tab.
func hasControlCharsExceptWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
	}
	return false
}
