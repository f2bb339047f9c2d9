package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MaxMessageLength = 2000
	MaxThemeLength   = 32
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error lists the messages sorted by field so the output is stable.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Theme tokens are color names or hex colors, e.g. "rose" or "#ff8800".
var themeRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[a-z][a-z0-9_-]*)$`)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,
}

// IsBlank reports whether body has nothing but whitespace.
func IsBlank(body string) bool {
	return strings.TrimSpace(body) == ""
}

func ValidateMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	body = strings.TrimSpace(body)
	if body == "" {
		errs.Add("body", "Message is empty")
	} else if utf8.RuneCountInString(body) > MaxMessageLength {
		errs.Add("body", fmt.Sprintf("Message is longer than %d characters", MaxMessageLength))
	}

	return errs
}

func ValidateTheme(theme string) ValidationErrors {
	errs := make(ValidationErrors)

	theme = strings.TrimSpace(theme)
	if theme == "" {
		errs.Add("theme", "Theme is required")
	} else if len(theme) > MaxThemeLength {
		errs.Add("theme", "Theme is too long")
	} else if !themeRegex.MatchString(theme) {
		errs.Add("theme", "Theme must be a color name or a #rrggbb value")
	}

	return errs
}

func ValidateImage(contentType string, size, maxBytes int64) ValidationErrors {
	errs := make(ValidationErrors)

	if !allowedImageTypes[strings.ToLower(contentType)] {
		errs.Add("image", fmt.Sprintf("Unsupported image type %q", contentType))
	}
	if size < 0 {
		return errs
	}
	if size == 0 {
		errs.Add("size", "Image is empty")
	} else if maxBytes > 0 && size > maxBytes {
		errs.Add("size", fmt.Sprintf("Image is larger than %d bytes", maxBytes))
	}

	return errs
}
