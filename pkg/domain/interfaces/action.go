package interfaces

import (
	"context"

	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// ActionRepository defines the interface for Action data access
type ActionRepository interface {
	// Create stores a new action with auto-generated ID
	Create(ctx context.Context, action *model.Action) (*model.Action, error)

	// Get retrieves an action by ID
	Get(ctx context.Context, id types.ActionID) (*model.Action, error)

	// Update updates an existing action
	Update(ctx context.Context, action *model.Action) (*model.Action, error)

	// ListByInvestigation retrieves all actions of an investigation,
	// ordered by CreatedAt ascending
	ListByInvestigation(ctx context.Context, invID types.InvestigationID) ([]*model.Action, error)

	// DeleteByInvestigation deletes all actions of an investigation.
	// Used to honor cascade ownership when the investigation is deleted.
	DeleteByInvestigation(ctx context.Context, invID types.InvestigationID) error

	// CountByType counts all actions grouped by action type
	CountByType(ctx context.Context) (map[string]int, error)
}
