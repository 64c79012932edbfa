package usecase

import (
	"errors"

	fsrepo "github.com/payops-lab/mtnavigator/pkg/repository/firestore"
	"github.com/payops-lab/mtnavigator/pkg/repository/memory"
)

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when a request fails validation before
	// touching the repository
	ErrInvalidInput = errors.New("invalid input")
)

// isRepoNotFound reports whether err is a not-found from any repository backend
func isRepoNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, fsrepo.ErrNotFound)
}

// isRepoConflict reports whether err is a uniqueness conflict from any backend
func isRepoConflict(err error) bool {
	return errors.Is(err, memory.ErrConflict) || errors.Is(err, fsrepo.ErrConflict)
}
