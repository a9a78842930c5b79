package pos

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
)

// ErrSessionClosed is returned when a sale is recorded against a session
// that was closed in the meantime.
var ErrSessionClosed = errors.New("pos session is not open")

type Repository interface {
	Open(ctx context.Context, session *model.POSSession) error
	FindOpenByStaff(ctx context.Context, staffID string) (*model.POSSession, error)
	FindByID(ctx context.Context, id string) (*model.POSSession, error)
	FindAll(ctx context.Context, filters *dto.SessionFilters) ([]model.POSSession, int, error)
	// Close stamps closing figures if the session is still open and reports whether it was.
	Close(ctx context.Context, session *model.POSSession) (bool, error)
}
