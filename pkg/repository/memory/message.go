package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages map[types.MessageID]*model.Message
	byWireID map[string]types.MessageID
	nextID   int64
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[types.MessageID]*model.Message),
		byWireID: make(map[string]types.MessageID),
		nextID:   1,
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyMessage(msg)
	stored.ID = types.MessageID(r.nextID)
	r.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.messages[stored.ID] = stored
	if stored.WireID != "" {
		r.byWireID[stored.WireID] = stored.ID
	}

	return copyMessage(stored), nil
}

func (r *messageRepository) Get(ctx context.Context, id types.MessageID) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
	}
	return copyMessage(msg), nil
}

func (r *messageRepository) GetByWireID(ctx context.Context, wireID string) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byWireID[wireID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("wire_id", wireID))
	}
	return copyMessage(r.messages[id]), nil
}

func copyMessage(msg *model.Message) *model.Message {
	copied := *msg
	if msg.Attributes != nil {
		copied.Attributes = make(map[string]string, len(msg.Attributes))
		for k, v := range msg.Attributes {
			copied.Attributes[k] = v
		}
	}
	if msg.ProcessedAt != nil {
		t := *msg.ProcessedAt
		copied.ProcessedAt = &t
	}
	return &copied
}
