// Package naming derives case numbers, procedure titles and filesystem-safe
// filenames from carousel image URLs.
package naming

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"beforeafter/pkg/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// UnknownCase is returned when no case number can be found in a source
	UnknownCase = "unknown"

	maxFilenameLen   = 255
	truncatedNameLen = 240
	maxExtensionLen  = 15
)

// Tried in order; the first match wins.
var casePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)case[-_]?(\d+)`),
	regexp.MustCompile(`(?i)cases[-_]?(\d+)`),
	regexp.MustCompile(`(?i)case(\d+)`),
}

// ExtractCaseNumber returns the digits following "case" in src, or UnknownCase
func ExtractCaseNumber(src string) string {
	for _, re := range casePatterns {
		if m := re.FindStringSubmatch(src); m != nil {
			return m[1]
		}
	}
	return UnknownCase
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.', r == ' ':
		return true
	}
	return false
}

// CleanFilename replaces every character outside [A-Za-z0-9_-. ] with '_'
// and bounds the result to 255 bytes, keeping a short extension intact.
func CleanFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return '_'
	}, name)

	if len(cleaned) <= maxFilenameLen {
		return cleaned
	}

	stem, ext := splitExt(cleaned)
	if len(ext) > maxExtensionLen {
		stem, ext = cleaned, ""
	}
	if len(stem) > truncatedNameLen {
		stem = stem[:truncatedNameLen]
	}
	return stem + ext
}

// splitExt splits off the final extension; leading dots never start one
func splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// BuildFilename produces "<procedure>_case_<case>_<basename>" made safe for disk
func BuildFilename(procedure, caseNumber, absoluteURL string) string {
	base := absoluteURL
	if i := strings.LastIndexByte(absoluteURL, '/'); i >= 0 {
		base = absoluteURL[i+1:]
	}
	return CleanFilename(fmt.Sprintf("%s_case_%s_%s", procedure, caseNumber, base))
}

// ProcedureTitle turns ".../before-after/breast-augmentation/" into
// "Breast Augmentation" using the second-to-last path segment.
func ProcedureTitle(pageURL *url.URL) string {
	parts := strings.Split(pageURL.Path, "/")
	if len(parts) < 2 {
		return ""
	}
	segment := strings.ReplaceAll(parts[len(parts)-2], "-", " ")
	return cases.Title(language.English).String(segment)
}

// BaseURL returns scheme://host of pageURL
func BaseURL(pageURL *url.URL) *url.URL {
	return &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host}
}

// Resolve joins src against base and derives the case number and safe filename
func Resolve(base *url.URL, procedure, src string) (models.ResolvedTarget, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return models.ResolvedTarget{}, fmt.Errorf("invalid image source %q: %w", src, err)
	}

	abs := base.ResolveReference(ref).String()
	caseNumber := ExtractCaseNumber(src)

	return models.ResolvedTarget{
		AbsoluteURL:  abs,
		CaseNumber:   caseNumber,
		SafeFilename: BuildFilename(procedure, caseNumber, abs),
	}, nil
}

// RawName is the filename used for the unprocessed download
func RawName(target models.ResolvedTarget) string {
	return "raw_" + target.SafeFilename
}

// ProcessedName is the filename for one cropped half; side is "left" or "right"
func ProcessedName(stem, side string) string {
	return fmt.Sprintf("%s_%s_cropped.jpg", stem, side)
}
