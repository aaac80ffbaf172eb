package client

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Function names look like APP__FUNCTION, both parts SCREAMING_SNAKE.
// The double underscore is reserved as the separator.
const functionNameSeparator = "__"

var (
	nonAlphanumericRuns = regexp.MustCompile(`[^0-9A-Za-z]+`)
	acronymBoundary     = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelBoundary       = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	underscoreRuns      = regexp.MustCompile(`_+`)
	validNamePart       = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

// ToScreamingSnake converts a string with spaces, hyphens, slashes, or
// camelCase word boundaries to SCREAMING_SNAKE_CASE, e.g. "getPet" →
// "GET_PET" and "Hacker News" → "HACKER_NEWS". OpenAPI operationIds are the
// main source of camelCase here.
func ToScreamingSnake(name string) string {
	s := nonAlphanumericRuns.ReplaceAllString(name, "_")
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToUpper(s)
}

// IsValidAppName reports whether the app name is SCREAMING_SNAKE without the
// reserved double underscore.
func IsValidAppName(name string) bool {
	return name != "" && validNamePart.MatchString(name) && !strings.Contains(name, functionNameSeparator)
}

// BuildFunctionName joins an app name and a function part, e.g.
// "GMAIL", "SEND_EMAIL" → "GMAIL__SEND_EMAIL". Already-prefixed names pass
// through unchanged.
func BuildFunctionName(appName, functionName string) string {
	if strings.HasPrefix(functionName, appName+functionNameSeparator) {
		return functionName
	}
	return appName + functionNameSeparator + functionName
}

// ParseAppNameFromFunctionName extracts the app name, e.g.
// "GMAIL__SEND_EMAIL" → "GMAIL".
func ParseAppNameFromFunctionName(functionName string) string {
	appName, _, _ := strings.Cut(functionName, functionNameSeparator)
	return appName
}

// GenerateDisplayName renders a function name for humans, e.g.
// "GMAIL__SEND_EMAIL" → "Gmail: Send Email".
func GenerateDisplayName(functionName string) string {
	appName, rest, found := strings.Cut(functionName, functionNameSeparator)
	if !found {
		return titleWords(appName)
	}
	return titleWords(appName) + ": " + titleWords(rest)
}

// titleWords turns SCREAMING_SNAKE into space-separated title case.
func titleWords(part string) string {
	words := strings.Split(strings.ToLower(part), "_")
	result := words[:0]
	for _, word := range words {
		if word == "" {
			continue
		}
		result = append(result, strings.ToUpper(word[:1])+word[1:])
	}
	return strings.Join(result, " ")
}

// TruncateIfTooLarge caps a string at maxSize bytes, appending a marker with
// the original size. The cut point backs up to a rune boundary so the result
// stays valid UTF-8.
func TruncateIfTooLarge(data string, maxSize int) string {
	size := len(data)
	if size <= maxSize {
		return data
	}

	cut := maxSize - 100
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return data[:cut] + fmt.Sprintf("... [truncated, size=%d]", size)
}
