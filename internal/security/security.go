// Package security holds the HTTP hardening middleware and input hygiene
// helpers used in front of the questionnaire pages and the JSON API.
package security

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/gin-gonic/gin"
)

// MaxSubjectLength bounds the free-text subject name stored with an assessment
const MaxSubjectLength = 120

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeSubject strips markup and control characters from a subject name,
// collapses whitespace and truncates to MaxSubjectLength runes.
func SanitizeSubject(input string) string {
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, input)
	input = strings.TrimSpace(whitespacePattern.ReplaceAllString(input, " "))
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}

	if utf8.RuneCountInString(input) > MaxSubjectLength {
		runes := []rune(input)
		input = strings.TrimSpace(string(runes[:MaxSubjectLength]))
	}

	return input
}

// ValidateContentType rejects request bodies that are neither JSON nor form data
func ValidateContentType() gin.HandlerFunc {
	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		contentType := strings.ToLower(c.GetHeader("Content-Type"))
		for _, allowed := range allowedTypes {
			if strings.HasPrefix(contentType, allowed) {
				c.Next()
				return
			}
		}

		appErr := apperrors.NewValidationError("unsupported content type: " + contentType)
		appErr.HTTPStatus = http.StatusUnsupportedMediaType
		_ = c.Error(appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
	}
}

// BodyLimit caps request bodies at maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestTimeout bounds the request context
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
