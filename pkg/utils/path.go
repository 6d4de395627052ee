package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrUnsafePath       = errors.New("unsafe path detected")
	ErrPathTooLong      = errors.New("path is too long")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrInvalidCharacter = errors.New("path contains invalid characters")
)

const MaxPathLength = 500

var (
	dangerousChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f\x7f]`)
	repeatedSlash  = regexp.MustCompile(`/+`)
)

// SanitizeObjectKey validates an object key or key prefix and normalises it
// to forward slashes without leading or trailing slash
func SanitizeObjectKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyPath
	}
	if len(key) > MaxPathLength {
		return "", ErrPathTooLong
	}
	if dangerousChars.MatchString(key) {
		return "", ErrInvalidCharacter
	}

	key = strings.ReplaceAll(key, "\\", "/")
	key = repeatedSlash.ReplaceAllString(key, "/")
	key = strings.Trim(key, "/")

	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return "", ErrUnsafePath
		}
	}
	if key == "" {
		return "", ErrEmptyPath
	}
	return key, nil
}
