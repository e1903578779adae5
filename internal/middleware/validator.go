package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/llamasearchai/opennode-scan/internal/engine"
)

// Input validation and sanitization utilities

// ValidateScanRoot validates local scan root paths
func ValidateScanRoot(path string) error {
	if path == "" {
		return fmt.Errorf("scan root cannot be empty")
	}

	cleaned := filepath.Clean(path)

	// Block path traversal attempts
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("path traversal detected")
	}

	// Block absolute paths to sensitive directories
	blocked := []string{"/etc", "/proc", "/sys", "/dev", "/root", "/boot"}
	for _, b := range blocked {
		if cleaned == b || strings.HasPrefix(cleaned, b+"/") {
			return fmt.Errorf("access to %s is not allowed", b)
		}
	}

	// Block dangerous patterns
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(path, d) {
			return fmt.Errorf("invalid characters in path")
		}
	}

	return nil
}

// ValidateStandards checks every requested compliance standard is known
func ValidateStandards(names []string) error {
	known := make(map[string]bool)
	for _, n := range engine.KnownStandards() {
		known[n] = true
	}
	for _, n := range names {
		if !known[strings.ToLower(strings.TrimSpace(n))] {
			return fmt.Errorf("unknown compliance standard: %s (known: %s)",
				n, strings.Join(engine.KnownStandards(), ", "))
		}
	}
	return nil
}

// ValidateFormat checks the requested report format
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "json", "markdown":
		return nil
	}
	return fmt.Errorf("invalid format: %s (allowed: json, markdown)", format)
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateReportID validates report ID format
func ValidateReportID(id string) error {
	if id == "" {
		return fmt.Errorf("report ID cannot be empty")
	}

	// UUID with the scan suffix: uuid-scan
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}-scan$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid report ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
