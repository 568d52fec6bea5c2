package backend

import (
	"context"

	applog "expenses/internal/log"
	"expenses/internal/ports"
	"expenses/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the store and the optional event publisher built from
// the configuration. Publisher is nil when events are disabled or the broker
// was unreachable.
type BackendResult struct {
	Store     ports.Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Service wires the result into an expense service. The service owns the
// store and publisher afterwards, so close the service instead of calling
// Cleanup. A nil logger selects the default configuration.
func (r *BackendResult) Service(logger *applog.Logger) *services.ExpenseService {
	if logger == nil {
		return services.NewExpenseService(r.Store, r.Publisher)
	}
	return services.NewExpenseServiceWithLogger(r.Store, r.Publisher, logger)
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	DBPath string

	// Memory backend specific
	MemorySeedFile string

	// Change events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
