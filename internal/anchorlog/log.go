// Package anchorlog appends immutable anchor records to a ledger-backed,
// append-only log. Every append returns a receipt whose status must be
// checked; issuance never proceeds on a non-success receipt.
package anchorlog

import (
	"context"

	"credanchor/internal/domain"
)

// Log accepts one record per call. Ordering across callers is whatever the
// underlying log's consensus produces; this package imposes none of its own.
type Log interface {
	Append(ctx context.Context, record domain.AnchorRecord) (domain.Receipt, error)
}
