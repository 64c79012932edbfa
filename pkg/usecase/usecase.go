// Package usecase implements the application operations on top of the
// repository and the classifier.
package usecase

import (
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/service/classifier"
)

type UseCases struct {
	repo       interfaces.Repository
	classifier *classifier.Classifier
	bulkLimit  int
}

type Option func(*UseCases)

// WithBulkLimit caps the number of concurrently processed bulk rows
func WithBulkLimit(limit int) Option {
	return func(uc *UseCases) {
		if limit > 0 {
			uc.bulkLimit = limit
		}
	}
}

func New(repo interfaces.Repository, cls *classifier.Classifier, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		classifier: cls,
		bulkLimit:  4,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
