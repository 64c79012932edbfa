package usecase

// Export the private completion check for testing
var CheckCompletion = (*UseCases).checkCompletion
