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

type actionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ActionRepository = &actionRepository{}

func newActionRepository(client *firestore.Client, collectionPrefix string) *actionRepository {
	return &actionRepository{client: client, collectionPrefix: collectionPrefix}
}

func (r *actionRepository) collection() string {
	return collectionName(r.collectionPrefix, "actions")
}

func (r *actionRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	id, err := nextID(ctx, r.client, r.counterCollection(), "action_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *action
	created.ID = types.ActionID(id)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.collection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}

	var action model.Action
	if err := docSnap.DataTo(&action); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
	}

	return &action, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	docRef := r.client.Collection(r.collection()).Doc(fmt.Sprintf("%d", action.ID))

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
		}
		return nil, goerr.Wrap(err, "failed to check action existence", goerr.V("id", action.ID))
	}

	updated := *action
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("id", action.ID))
	}

	return &updated, nil
}

func (r *actionRepository) ListByInvestigation(ctx context.Context, invID types.InvestigationID) ([]*model.Action, error) {
	iter := r.client.Collection(r.collection()).
		Where("InvestigationID", "==", int64(invID)).Documents(ctx)
	defer iter.Stop()

	var actions []*model.Action
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate actions", goerr.V("investigation_id", invID))
		}

		var action model.Action
		if err := docSnap.DataTo(&action); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}
		actions = append(actions, &action)
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
	iter := r.client.Collection(r.collection()).
		Where("InvestigationID", "==", int64(invID)).Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate actions", goerr.V("investigation_id", invID))
		}

		if _, err := docSnap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete action", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}
}

func (r *actionRepository) CountByType(ctx context.Context) (map[string]int, error) {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	counts := make(map[string]int)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			return counts, nil
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate actions")
		}

		var action model.Action
		if err := docSnap.DataTo(&action); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}
		counts[action.ActionType]++
	}
}
