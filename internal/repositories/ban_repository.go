package repositories

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
)

// BanRepository defines the interface for ban-record operations.
type BanRepository interface {
	Get(ctx context.Context, uid string) (*models.BanRecord, error)
	List(ctx context.Context) (map[string]models.BanRecord, error)
	Set(ctx context.Context, uid string, record *models.BanRecord) error
	Delete(ctx context.Context, uid string) error
}

// FirebaseBanRepository implements BanRepository against the realtime
// database.
type FirebaseBanRepository struct {
	client *db.Client
}

// NewFirebaseBanRepository creates a new FirebaseBanRepository.
func NewFirebaseBanRepository(client *db.Client) *FirebaseBanRepository {
	return &FirebaseBanRepository{client: client}
}

// Get retrieves the ban record stored at bannedUsers/{uid}.
func (r *FirebaseBanRepository) Get(ctx context.Context, uid string) (*models.BanRecord, error) {
	var record models.BanRecord
	if err := r.client.NewRef(bannedUsersPath+"/"+uid).Get(ctx, &record); err != nil {
		return nil, fmt.Errorf("read ban %s: %w", uid, err)
	}
	if record.BannedUntil == 0 {
		return nil, ErrNotFound
	}
	return &record, nil
}

// List retrieves every ban record keyed by uid.
func (r *FirebaseBanRepository) List(ctx context.Context) (map[string]models.BanRecord, error) {
	var bans map[string]models.BanRecord
	if err := r.client.NewRef(bannedUsersPath).Get(ctx, &bans); err != nil {
		return nil, fmt.Errorf("read bans: %w", err)
	}
	if bans == nil {
		bans = map[string]models.BanRecord{}
	}
	return bans, nil
}

// Set writes (or replaces) the ban record for a user.
func (r *FirebaseBanRepository) Set(ctx context.Context, uid string, record *models.BanRecord) error {
	if err := r.client.NewRef(bannedUsersPath+"/"+uid).Set(ctx, record); err != nil {
		return fmt.Errorf("write ban %s: %w", uid, err)
	}
	return nil
}

// Delete removes the ban record for a user. Deleting an absent record is not
// an error.
func (r *FirebaseBanRepository) Delete(ctx context.Context, uid string) error {
	if err := r.client.NewRef(bannedUsersPath+"/"+uid).Delete(ctx); err != nil {
		return fmt.Errorf("delete ban %s: %w", uid, err)
	}
	return nil
}
