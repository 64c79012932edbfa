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

type investigationRepository struct {
	mu             sync.RWMutex
	investigations map[types.InvestigationID]*model.Investigation
	byReference    map[string]types.InvestigationID
	nextID         int64
}

var _ interfaces.InvestigationRepository = &investigationRepository{}

func newInvestigationRepository() *investigationRepository {
	return &investigationRepository{
		investigations: make(map[types.InvestigationID]*model.Investigation),
		byReference:    make(map[string]types.InvestigationID),
		nextID:         1,
	}
}

func (r *investigationRepository) Create(ctx context.Context, inv *model.Investigation) (*model.Investigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byReference[inv.ReferenceNumber]; exists {
		return nil, goerr.Wrap(ErrConflict, "reference number is already taken",
			goerr.V("reference_number", inv.ReferenceNumber))
	}

	stored := copyInvestigation(inv)
	stored.ID = types.InvestigationID(r.nextID)
	r.nextID++
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}

	r.investigations[stored.ID] = stored
	r.byReference[stored.ReferenceNumber] = stored.ID

	return copyInvestigation(stored), nil
}

func (r *investigationRepository) Get(ctx context.Context, id types.InvestigationID) (*model.Investigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.investigations[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", id))
	}
	return copyInvestigation(inv), nil
}

func (r *investigationRepository) GetByReference(ctx context.Context, referenceNumber string) (*model.Investigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byReference[referenceNumber]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "investigation not found",
			goerr.V("reference_number", referenceNumber))
	}
	return copyInvestigation(r.investigations[id]), nil
}

func (r *investigationRepository) List(ctx context.Context, opts ...interfaces.ListInvestigationOption) ([]*model.Investigation, int, error) {
	cfg := interfaces.BuildListInvestigationConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Investigation, 0, len(r.investigations))
	for _, inv := range r.investigations {
		if cfg.Status() != nil && inv.Status != *cfg.Status() {
			continue
		}
		if cfg.Priority() != nil && inv.Priority != *cfg.Priority() {
			continue
		}
		matched = append(matched, inv)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	start := cfg.Offset()
	if start > total {
		start = total
	}
	end := start + cfg.Limit()
	if end > total {
		end = total
	}

	page := make([]*model.Investigation, 0, end-start)
	for _, inv := range matched[start:end] {
		page = append(page, copyInvestigation(inv))
	}

	return page, total, nil
}

func (r *investigationRepository) Update(ctx context.Context, inv *model.Investigation) (*model.Investigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.investigations[inv.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", inv.ID))
	}

	stored := copyInvestigation(inv)
	stored.ReferenceNumber = existing.ReferenceNumber // assigned once, never rewritten
	stored.UpdatedAt = time.Now().UTC()

	r.investigations[stored.ID] = stored
	return copyInvestigation(stored), nil
}

func (r *investigationRepository) Delete(ctx context.Context, id types.InvestigationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.investigations[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", id))
	}

	delete(r.byReference, inv.ReferenceNumber)
	delete(r.investigations, id)
	return nil
}

func (r *investigationRepository) CountByStatus(ctx context.Context) (map[types.InvestigationStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[types.InvestigationStatus]int)
	for _, inv := range r.investigations {
		counts[inv.Status]++
	}
	return counts, nil
}

func (r *investigationRepository) CountByPriority(ctx context.Context) (map[types.Priority]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[types.Priority]int)
	for _, inv := range r.investigations {
		counts[inv.Priority]++
	}
	return counts, nil
}

func (r *investigationRepository) ListResolved(ctx context.Context) ([]*model.Investigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var resolved []*model.Investigation
	for _, inv := range r.investigations {
		if inv.ResolvedAt == nil {
			continue
		}
		if inv.Status != types.InvestigationStatusResolved && inv.Status != types.InvestigationStatusClosed {
			continue
		}
		resolved = append(resolved, copyInvestigation(inv))
	}
	return resolved, nil
}

func copyInvestigation(inv *model.Investigation) *model.Investigation {
	copied := *inv
	if inv.CustomerInfo != nil {
		copied.CustomerInfo = make(map[string]any, len(inv.CustomerInfo))
		for k, v := range inv.CustomerInfo {
			copied.CustomerInfo[k] = v
		}
	}
	if inv.ResolvedAt != nil {
		t := *inv.ResolvedAt
		copied.ResolvedAt = &t
	}
	return &copied
}
