package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
)

// Mode selects how a resolved URL is compared with its expected suffix.
type Mode int

const (
	// MatchSuffix requires the URL to end with the suffix.
	MatchSuffix Mode = iota
	// MatchContains requires the suffix to occur in the URL at index 1 or later.
	MatchContains
)

func (m Mode) String() string {
	switch m {
	case MatchSuffix:
		return "suffix"
	case MatchContains:
		return "contains"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ValidateSuffix reports whether url ends with expected. The comparison is an
// exact, case-sensitive tail match with no slash normalization.
func ValidateSuffix(url, expected string) bool {
	return strings.HasSuffix(url, expected)
}

// ValidateContains reports whether expected occurs in url at an index >= 1.
// A match at index 0 counts as a failure, matching the legacy header check.
func ValidateContains(url, expected string) bool {
	return strings.Index(url, expected) >= 1
}

// Validate applies mode to url and expected.
func Validate(mode Mode, url, expected string) bool {
	if mode == MatchContains {
		return ValidateContains(url, expected)
	}
	return ValidateSuffix(url, expected)
}

// MismatchMessage is the failure line for a destination that does not match.
func MismatchMessage(url, expected string) string {
	return fmt.Sprintf("%s does not end with %s", url, expected)
}

// StatusMessage is the failure line for a destination with a non-200 status.
func StatusMessage(url string, status int) string {
	return fmt.Sprintf("%s is not a valid url - status code: %d.", url, status)
}

// Resolver resolves a link locator to its rendered destination.
type Resolver interface {
	LinkDestination(ctx context.Context, loc page.Locator) (string, error)
}

// Fetcher returns the HTTP status of a URL.
type Fetcher interface {
	FetchStatus(ctx context.Context, url string) (int, error)
}

// CheckDestinations resolves every link and compares it with its suffix.
// Missing elements become failure lines; any other error aborts the check.
func CheckDestinations(ctx context.Context, r Resolver, links []registry.LinkSpec, mode Mode) ([]string, error) {
	var failures []string
	for _, link := range links {
		url, err := r.LinkDestination(ctx, link.Locator)
		if err != nil {
			if !page.HasCode(err, page.CodeElementNotFound) {
				return failures, err
			}
			slog.Warn("link not found", "locator", link.Locator.String(), "error", err)
			failures = append(failures, fmt.Sprintf("link at %s was not found", link.Locator))
			continue
		}
		if !Validate(mode, url, link.Suffix) {
			slog.Warn("link destination mismatch", "url", url, "expected", link.Suffix, "mode", mode.String())
			failures = append(failures, MismatchMessage(url, link.Suffix))
		}
	}
	return failures, nil
}

// CheckStatuses resolves every link and fetches its destination, recording
// each non-200 status or network error as a failure line.
func CheckStatuses(ctx context.Context, r Resolver, f Fetcher, links []registry.LinkSpec) ([]string, error) {
	var failures []string
	for _, link := range links {
		url, err := r.LinkDestination(ctx, link.Locator)
		if err != nil {
			if !page.HasCode(err, page.CodeElementNotFound) {
				return failures, err
			}
			failures = append(failures, fmt.Sprintf("link at %s was not found", link.Locator))
			continue
		}
		status, err := f.FetchStatus(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return failures, ctx.Err()
			}
			slog.Warn("link fetch failed", "url", url, "error", err)
			failures = append(failures, fmt.Sprintf("%s is not a valid url - error: %v.", url, err))
			continue
		}
		if status != http.StatusOK {
			slog.Warn("link status not ok", "url", url, "status", status)
			failures = append(failures, StatusMessage(url, status))
		}
	}
	return failures, nil
}
