package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository(client *firestore.Client, collectionPrefix string) *messageRepository {
	return &messageRepository{client: client, collectionPrefix: collectionPrefix}
}

func (r *messageRepository) collection() string {
	return collectionName(r.collectionPrefix, "messages")
}

func (r *messageRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	id, err := nextID(ctx, r.client, r.counterCollection(), "message_counter")
	if err != nil {
		return nil, err
	}

	created := *msg
	created.ID = types.MessageID(id)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.collection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create message", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *messageRepository) Get(ctx context.Context, id types.MessageID) (*model.Message, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.collection()).Doc(docID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("id", id))
	}

	var msg model.Message
	if err := docSnap.DataTo(&msg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode message", goerr.V("id", id))
	}

	return &msg, nil
}

func (r *messageRepository) GetByWireID(ctx context.Context, wireID string) (*model.Message, error) {
	iter := r.client.Collection(r.collection()).Where("WireID", "==", wireID).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("wire_id", wireID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query message", goerr.V("wire_id", wireID))
	}

	var msg model.Message
	if err := docSnap.DataTo(&msg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode message", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &msg, nil
}
