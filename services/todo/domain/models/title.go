package models

import (
	"fmt"
	"unicode/utf8"
)

// Title is the text shown in a to-do row and in its reminder.
type Title string

// MaxTitleLength is the longest accepted title, in characters.
const MaxTitleLength = 255

// NewTitle enforces 1..MaxTitleLength characters.
func NewTitle(s string) (Title, error) {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", fmt.Errorf("title must not be empty")
	}
	if n > MaxTitleLength {
		return "", fmt.Errorf("title must not exceed %d characters", MaxTitleLength)
	}
	return Title(s), nil
}

// String returns the underlying string value.
func (t Title) String() string {
	return string(t)
}
