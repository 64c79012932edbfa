// Package memory provides an in-memory Repository implementation for
// development and tests.
package memory

import (
	"errors"

	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a uniqueness constraint is violated
var ErrConflict = errors.New("record conflicts with an existing record")

// Memory is an in-memory Repository
type Memory struct {
	message       *messageRepository
	investigation *investigationRepository
	action        *actionRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		message:       newMessageRepository(),
		investigation: newInvestigationRepository(),
		action:        newActionRepository(),
	}
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Investigation() interfaces.InvestigationRepository {
	return m.investigation
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

// Close is a no-op for the in-memory repository
func (m *Memory) Close() error {
	return nil
}
