package decision

import "context"

type Repository interface {
	// Create appends an audit row (DB uniqueness ensures one per stage)
	Create(ctx context.Context, d *Decision) error

	// ListByApplication returns rows for a numeric application id, oldest first
	ListByApplication(ctx context.Context, applicationID uint64) ([]Decision, error)
}
