package interfaces

import (
	"context"

	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// MessageRepository defines the interface for Message data access
type MessageRepository interface {
	// Create stores a new message with auto-generated ID
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)

	// Get retrieves a message by ID
	Get(ctx context.Context, id types.MessageID) (*model.Message, error)

	// GetByWireID retrieves a message by its external wire identifier
	GetByWireID(ctx context.Context, wireID string) (*model.Message, error)
}
