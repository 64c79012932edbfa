// Package firestore provides a Firestore-backed Repository implementation.
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a uniqueness constraint is violated
var ErrConflict = errors.New("record conflicts with an existing record")

type Firestore struct {
	client        *firestore.Client
	message       *messageRepository
	investigation *investigationRepository
	action        *actionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*config)

type config struct {
	databaseID       string
	collectionPrefix string
}

// WithDatabaseID selects a named Firestore database instead of the default
func WithDatabaseID(databaseID string) Option {
	return func(c *config) {
		c.databaseID = databaseID
	}
}

// WithCollectionPrefix prefixes every collection name, so multiple
// deployments can share one database
func WithCollectionPrefix(prefix string) Option {
	return func(c *config) {
		c.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var client *firestore.Client
	var err error
	if cfg.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, cfg.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", cfg.databaseID))
	}

	return &Firestore{
		client:        client,
		message:       newMessageRepository(client, cfg.collectionPrefix),
		investigation: newInvestigationRepository(client, cfg.collectionPrefix),
		action:        newActionRepository(client, cfg.collectionPrefix),
	}, nil
}

func (f *Firestore) Message() interfaces.MessageRepository {
	return f.message
}

func (f *Firestore) Investigation() interfaces.InvestigationRepository {
	return f.investigation
}

func (f *Firestore) Action() interfaces.ActionRepository {
	return f.action
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// nextID atomically increments a named counter document. The first
// allocation creates the counter.
func nextID(ctx context.Context, client *firestore.Client, counterCollection, counterDoc string) (int64, error) {
	counterRef := client.Collection(counterCollection).Doc(counterDoc)

	var id int64
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if isNotFound(err) {
				id = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": id,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		id = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: id},
		})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to allocate next ID",
			goerr.V("counter", counterDoc))
	}

	return id, nil
}
