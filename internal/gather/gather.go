// Package gather copies pick feeds and season results from a data source
// into the local archive.
package gather

import (
	"context"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs one gathering pass. It returns when the pass completes or
	// ctx is cancelled.
	Run(ctx context.Context) error
}
