package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRangeRequestsNotSupported = errors.New("range requests are not supported")

type VersionParseError struct {
	Raw string
	Err error
}

func (e *VersionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse package version %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("failed to parse package version %q", e.Raw)
}

func (e *VersionParseError) Unwrap() error { return e.Err }

// UnsupportedPlatformError is returned both for host detection and for asset
// lookups; Supported is empty for the former.
type UnsupportedPlatformError struct {
	Platform  string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("platform %s is not supported", e.Platform)
	}
	return fmt.Sprintf("platform %s is not supported; supported platforms are: %s", e.Platform, strings.Join(e.Supported, ", "))
}

type UnsupportedArchitectureError struct {
	Architecture string
	Platform     string
	Supported    []string
}

func (e *UnsupportedArchitectureError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("arch %s is not supported", e.Architecture)
	}
	return fmt.Sprintf("architecture %s is not supported for platform %s; supported architectures are: %s",
		e.Architecture, e.Platform, strings.Join(e.Supported, ", "))
}

type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type ExtractionError struct {
	Archive string
	Entry   string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extracting %s from %s: %v", e.Entry, e.Archive, e.Err)
	}
	return fmt.Sprintf("extracting %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
