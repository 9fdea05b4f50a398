package domain

import (
	"github.com/hashicorp/go-multierror"
)

// BundleError is a failure confined to one bundle or document during a refresh.
type BundleError struct {
	Origin string
	Err    error
}

// Error implements error.
func (e *BundleError) Error() string {
	return e.Origin + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *BundleError) Unwrap() error {
	return e.Err
}

// VersionDirection describes how a bundle's vendor version moved between refreshes.
type VersionDirection string

const (
	// VersionUpgraded means the new version is greater than the previous one.
	VersionUpgraded VersionDirection = "upgraded"
	// VersionDowngraded means the new version is lower than the previous one.
	VersionDowngraded VersionDirection = "downgraded"
	// VersionChanged means the versions differ but cannot be ordered.
	VersionChanged VersionDirection = "changed"
)

// VersionChange records a vendor version transition of one bundle.
type VersionChange struct {
	Origin    string
	From      string
	To        string
	Direction VersionDirection
}

// RefreshReport summarizes one refresh of the cache index.
type RefreshReport struct {
	// Updated lists the documents that were parsed in this refresh.
	Updated []string
	// Unchanged lists the local files skipped because their modification time did not increase.
	Unchanged []string
	// Purged lists the keys that were present before the refresh and are gone after it.
	Purged []ProfileKey
	// Failed holds one error per bundle or document that could not be ingested.
	Failed   []*BundleError
	Versions []VersionChange
}

// Err returns the per-bundle failures as a single error, or nil when there were none.
func (r *RefreshReport) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, failure := range r.Failed {
		result = multierror.Append(result, failure)
	}
	return result.ErrorOrNil()
}
