package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[types.ActionID]*model.Action
	nextID  int64
}

var _ interfaces.ActionRepository = &actionRepository{}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[types.ActionID]*model.Action),
		nextID:  1,
	}
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyAction(action)
	stored.ID = types.ActionID(r.nextID)
	r.nextID++
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}

	r.actions[stored.ID] = stored
	return copyAction(stored), nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}
	return copyAction(action), nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actions[action.ID]; !ok {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	stored := copyAction(action)
	stored.UpdatedAt = time.Now().UTC()

	r.actions[stored.ID] = stored
	return copyAction(stored), nil
}

func (r *actionRepository) ListByInvestigation(ctx context.Context, invID types.InvestigationID) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var actions []*model.Action
	for _, action := range r.actions {
		if action.InvestigationID == invID {
			actions = append(actions, copyAction(action))
		}
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].CreatedAt.Equal(actions[j].CreatedAt) {
			return actions[i].ID < actions[j].ID
		}
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})

	return actions, nil
}

func (r *actionRepository) DeleteByInvestigation(ctx context.Context, invID types.InvestigationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, action := range r.actions {
		if action.InvestigationID == invID {
			delete(r.actions, id)
		}
	}
	return nil
}

func (r *actionRepository) CountByType(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, action := range r.actions {
		counts[action.ActionType]++
	}
	return counts, nil
}

func copyAction(action *model.Action) *model.Action {
	copied := *action
	if action.CompletedAt != nil {
		t := *action.CompletedAt
		copied.CompletedAt = &t
	}
	return &copied
}
