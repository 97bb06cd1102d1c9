package engagement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

var (
	// ErrInvalidArgument indicates a malformed id, page parameter or missing content.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden indicates the actor does not own the entity it tried to change.
	ErrForbidden = errors.New("forbidden")
	// ErrDataIntegrity indicates a stored entity references an owner that does not exist.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrConflict indicates a uniqueness violation reported by the store.
	ErrConflict = repositories.ErrConflict
	// ErrUnavailable indicates a collaborator could not be reached.
	ErrUnavailable = repositories.ErrUnavailable
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// validateID rejects ids that are not UUIDs.
func validateID(field, id string) error {
	if id == "" {
		return invalidArgument("%s is required", field)
	}
	if _, err := uuid.Parse(id); err != nil {
		return invalidArgument("%s %q is not a valid id", field, id)
	}
	return nil
}

// validateViewer accepts the anonymous viewer.
func validateViewer(viewerID string) error {
	if viewerID == "" {
		return nil
	}
	return validateID("viewer id", viewerID)
}

func requireContent(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", invalidArgument("%s is required", field)
	}
	return trimmed, nil
}

// visibleTo hides unpublished videos from everyone but their owner.
func visibleTo(v models.Video, viewerID string) error {
	if !v.IsPublished && v.OwnerID != viewerID {
		return fmt.Errorf("video %s: %w", v.ID, ErrNotFound)
	}
	return nil
}
