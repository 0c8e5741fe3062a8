package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetMissing is returned when the provider answers successfully
	// but leaves the requested id out of the body.
	ErrAssetMissing = errors.New("asset missing from price response")

	// ErrDirectoryUnavailable wraps any failure to download the coin list.
	ErrDirectoryUnavailable = errors.New("asset directory unavailable")
)

// FetchError reports a failed price lookup for one asset id.
type FetchError struct {
	AssetID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch price for %s: %v", e.AssetID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
