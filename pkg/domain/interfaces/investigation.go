package interfaces

import (
	"context"

	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// InvestigationRepository defines the interface for Investigation data access
type InvestigationRepository interface {
	// Create stores a new investigation with auto-generated ID.
	// Fails with ErrConflict when the reference number is already taken.
	Create(ctx context.Context, inv *model.Investigation) (*model.Investigation, error)

	// Get retrieves an investigation by ID
	Get(ctx context.Context, id types.InvestigationID) (*model.Investigation, error)

	// GetByReference retrieves an investigation by its reference number
	GetByReference(ctx context.Context, referenceNumber string) (*model.Investigation, error)

	// List retrieves investigations matching the options, ordered by
	// UpdatedAt descending. Returns the page items and the total match
	// count before pagination.
	List(ctx context.Context, opts ...ListInvestigationOption) ([]*model.Investigation, int, error)

	// Update updates an existing investigation
	Update(ctx context.Context, inv *model.Investigation) (*model.Investigation, error)

	// Delete deletes an investigation by ID
	Delete(ctx context.Context, id types.InvestigationID) error

	// CountByStatus counts investigations grouped by status
	CountByStatus(ctx context.Context) (map[types.InvestigationStatus]int, error)

	// CountByPriority counts investigations grouped by priority
	CountByPriority(ctx context.Context) (map[types.Priority]int, error)

	// ListResolved retrieves investigations with status resolved or closed
	// and a non-nil ResolvedAt, for resolution-time analytics
	ListResolved(ctx context.Context) ([]*model.Investigation, error)
}
