package utils

import (
	"regexp"
	"strings"
)

// Patterns for credential material that must never reach logs or responses
var (
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	tokenPattern  = regexp.MustCompile(`(?i)(api_?key|token|apikey)=[^&\s"]+`)
)

const redacted = "[redacted]"

// SanitizeMessage strips anything resembling a credential from a message
// before it is logged or returned to a caller
func SanitizeMessage(msg string) string {
	msg = bearerPattern.ReplaceAllString(msg, "Bearer "+redacted)
	msg = tokenPattern.ReplaceAllString(msg, "$1="+redacted)
	return msg
}

// SanitizeError returns the sanitized message of err, or "" for nil
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeMessage(err.Error())
}

// SanitizeURL masks token-bearing query parameters in a URL string
func SanitizeURL(rawURL string) string {
	if !strings.ContainsAny(rawURL, "?&") {
		return rawURL
	}
	return tokenPattern.ReplaceAllString(rawURL, "$1="+redacted)
}
