package services

import (
	"path/filepath"
	"strings"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
)

// stripPathSeparators removes path separator and traversal sequences so a
// stored name can never escape its place in the tree.
func stripPathSeparators(name string) string {
	replacer := strings.NewReplacer("..", "", "/", "", "\\", "")
	return strings.TrimSpace(replacer.Replace(name))
}

// validateFolderName trims and sanitizes a user-supplied folder name.
// Empty, whitespace-only, over-length, and fully-invalid names are rejected.
func validateFolderName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newValidationError("folder name is required")
	}
	if len(trimmed) > 255 {
		return "", newValidationError("folder name exceeds 255 characters")
	}
	name := stripPathSeparators(trimmed)
	if name == "" {
		return "", newValidationError("folder name contains only invalid characters")
	}
	return name, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer("..", "_", "/", "_", "\\", "_")
	return replacer.Replace(name)
}

func isFileExtensionAllowed(fileName string) bool {
	allowed := config.AppConfig.Storage.AllowedExtensions
	if len(allowed) == 0 {
		return true
	}

	fileExt := strings.ToLower(filepath.Ext(fileName))
	for _, ext := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "*" {
			return true
		}
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if normalized == fileExt {
			return true
		}
	}

	return false
}
