package notification

import (
	"context"

	"github.com/google/uuid"
)

// Store is the shared inbox the dispatcher appends to. UI layers poll it;
// nothing in the engine ever waits for a recipient.
type Store interface {
	Append(ctx context.Context, ev *Event) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListByRole(ctx context.Context, role Role, unreadOnly bool) ([]Event, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*Event, error)
}
