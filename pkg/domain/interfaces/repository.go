package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Message() MessageRepository
	Investigation() InvestigationRepository
	Action() ActionRepository

	// Close releases any underlying connections
	Close() error
}
