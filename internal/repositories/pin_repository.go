package repositories

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// PinRepository defines the interface for the single pinned-comment scalar.
type PinRepository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, commentID string) error
	Clear(ctx context.Context) error
}

// FirebasePinRepository implements PinRepository against the realtime
// database.
type FirebasePinRepository struct {
	client *db.Client
}

// NewFirebasePinRepository creates a new FirebasePinRepository.
func NewFirebasePinRepository(client *db.Client) *FirebasePinRepository {
	return &FirebasePinRepository{client: client}
}

// Get retrieves the pinned comment id, or "" when nothing is pinned.
func (r *FirebasePinRepository) Get(ctx context.Context) (string, error) {
	var id string
	if err := r.client.NewRef(pinnedCommentPath).Get(ctx, &id); err != nil {
		return "", fmt.Errorf("read pinned comment: %w", err)
	}
	return id, nil
}

// Set pins the given comment id.
func (r *FirebasePinRepository) Set(ctx context.Context, commentID string) error {
	if err := r.client.NewRef(pinnedCommentPath).Set(ctx, commentID); err != nil {
		return fmt.Errorf("write pinned comment: %w", err)
	}
	return nil
}

// Clear removes the pin.
func (r *FirebasePinRepository) Clear(ctx context.Context) error {
	if err := r.client.NewRef(pinnedCommentPath).Delete(ctx); err != nil {
		return fmt.Errorf("clear pinned comment: %w", err)
	}
	return nil
}
