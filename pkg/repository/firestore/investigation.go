package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type investigationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.InvestigationRepository = &investigationRepository{}

func newInvestigationRepository(client *firestore.Client, collectionPrefix string) *investigationRepository {
	return &investigationRepository{client: client, collectionPrefix: collectionPrefix}
}

func (r *investigationRepository) collection() string {
	return collectionName(r.collectionPrefix, "investigations")
}

// refsCollection holds one index doc per reference number, keyed by the
// reference itself, so uniqueness can be enforced in a transaction
func (r *investigationRepository) refsCollection() string {
	return collectionName(r.collectionPrefix, "investigation_refs")
}

func (r *investigationRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

func (r *investigationRepository) Create(ctx context.Context, inv *model.Investigation) (*model.Investigation, error) {
	id, err := nextID(ctx, r.client, r.counterCollection(), "investigation_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *inv
	created.ID = types.InvestigationID(id)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	docRef := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", created.ID))
	refRef := r.client.Collection(r.refsCollection()).Doc(created.ReferenceNumber)

	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(refRef); err == nil {
			return goerr.Wrap(ErrConflict, "reference number is already taken",
				goerr.V("reference_number", created.ReferenceNumber))
		} else if !isNotFound(err) {
			return goerr.Wrap(err, "failed to check reference number")
		}

		if err := tx.Set(refRef, map[string]interface{}{
			"investigation_id": int64(created.ID),
		}); err != nil {
			return goerr.Wrap(err, "failed to index reference number")
		}
		return tx.Set(docRef, &created)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create investigation",
			goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *investigationRepository) Get(ctx context.Context, id types.InvestigationID) (*model.Investigation, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get investigation", goerr.V("id", id))
	}

	var inv model.Investigation
	if err := docSnap.DataTo(&inv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode investigation", goerr.V("id", id))
	}

	return &inv, nil
}

func (r *investigationRepository) GetByReference(ctx context.Context, referenceNumber string) (*model.Investigation, error) {
	iter := r.client.Collection(r.collection()).
		Where("ReferenceNumber", "==", referenceNumber).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "investigation not found",
			goerr.V("reference_number", referenceNumber))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query investigation",
			goerr.V("reference_number", referenceNumber))
	}

	var inv model.Investigation
	if err := docSnap.DataTo(&inv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode investigation", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &inv, nil
}

// List loads all documents and filters in process. Investigation volumes
// stay small enough that composite indexes are not worth maintaining.
func (r *investigationRepository) List(ctx context.Context, opts ...interfaces.ListInvestigationOption) ([]*model.Investigation, int, error) {
	cfg := interfaces.BuildListInvestigationConfig(opts...)

	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	var matched []*model.Investigation
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate investigations")
		}

		var inv model.Investigation
		if err := docSnap.DataTo(&inv); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to decode investigation", goerr.V("doc_id", docSnap.Ref.ID))
		}

		if cfg.Status() != nil && inv.Status != *cfg.Status() {
			continue
		}
		if cfg.Priority() != nil && inv.Priority != *cfg.Priority() {
			continue
		}
		matched = append(matched, &inv)
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

	return matched[start:end], total, nil
}

func (r *investigationRepository) Update(ctx context.Context, inv *model.Investigation) (*model.Investigation, error) {
	docRef := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", inv.ID))

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", inv.ID))
		}
		return nil, goerr.Wrap(err, "failed to check investigation existence", goerr.V("id", inv.ID))
	}

	var existing model.Investigation
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode investigation", goerr.V("id", inv.ID))
	}

	updated := *inv
	updated.ReferenceNumber = existing.ReferenceNumber // assigned once, never rewritten
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update investigation", goerr.V("id", inv.ID))
	}

	return &updated, nil
}

func (r *investigationRepository) Delete(ctx context.Context, id types.InvestigationID) error {
	docRef := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", id))

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "investigation not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check investigation existence", goerr.V("id", id))
	}

	var inv model.Investigation
	if err := docSnap.DataTo(&inv); err != nil {
		return goerr.Wrap(err, "failed to decode investigation", goerr.V("id", id))
	}

	if inv.ReferenceNumber != "" {
		refRef := r.client.Collection(r.refsCollection()).Doc(inv.ReferenceNumber)
		if _, err := refRef.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete reference index",
				goerr.V("reference_number", inv.ReferenceNumber))
		}
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete investigation", goerr.V("id", id))
	}

	return nil
}

func (r *investigationRepository) CountByStatus(ctx context.Context) (map[types.InvestigationStatus]int, error) {
	counts := make(map[types.InvestigationStatus]int)
	err := r.forEach(ctx, func(inv *model.Investigation) {
		counts[inv.Status]++
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *investigationRepository) CountByPriority(ctx context.Context) (map[types.Priority]int, error) {
	counts := make(map[types.Priority]int)
	err := r.forEach(ctx, func(inv *model.Investigation) {
		counts[inv.Priority]++
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *investigationRepository) ListResolved(ctx context.Context) ([]*model.Investigation, error) {
	var resolved []*model.Investigation
	err := r.forEach(ctx, func(inv *model.Investigation) {
		if inv.ResolvedAt == nil {
			return
		}
		if inv.Status != types.InvestigationStatusResolved && inv.Status != types.InvestigationStatusClosed {
			return
		}
		copied := *inv
		resolved = append(resolved, &copied)
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *investigationRepository) forEach(ctx context.Context, fn func(*model.Investigation)) error {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate investigations")
		}

		var inv model.Investigation
		if err := docSnap.DataTo(&inv); err != nil {
			return goerr.Wrap(err, "failed to decode investigation", goerr.V("doc_id", docSnap.Ref.ID))
		}
		fn(&inv)
	}
}
