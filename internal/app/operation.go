package app

// Edit operation statuses recorded in edit_operations.
const (
	StatusSuccess = "success"
	StatusPartial = "partial" // an ingestion batch where some paths failed
	StatusError   = "error"
)

// EditOperation tracks a CLI command that may mutate the library.
// Operations are created in memory with ID=0. Only mutating commands
// persist them, which gives them an id from the database. That id is also
// the version of the snapshot uploaded when the command finishes.
type EditOperation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewEditOperation creates a new in-memory edit operation.
func NewEditOperation(operation, parameters string) *EditOperation {
	return &EditOperation{
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *EditOperation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation failed. A failure is never downgraded.
func (op *EditOperation) Fail() {
	op.Status = StatusError
}

// Partial marks the operation partially successful unless it already failed.
func (op *EditOperation) Partial() {
	if op.Status != StatusError {
		op.Status = StatusPartial
	}
}
