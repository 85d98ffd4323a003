package utils

import (
	"strconv"
	"strings"
)

// ToUint parses a path identifier.
func ToUint(id string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	return uint(n), err
}

// NonEmpty reports whether s has any non-whitespace content.
func NonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
