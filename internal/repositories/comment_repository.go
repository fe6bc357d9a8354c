package repositories

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (string, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context) (map[string]models.Comment, error)
	ListByAuthor(ctx context.Context, userID string) (map[string]models.Comment, error)
	RemoveAll(ctx context.Context, ids []string, clearPin bool) error
}

// FirebaseCommentRepository implements CommentRepository against the realtime
// database.
type FirebaseCommentRepository struct {
	client *db.Client
}

// NewFirebaseCommentRepository creates a new FirebaseCommentRepository.
func NewFirebaseCommentRepository(client *db.Client) *FirebaseCommentRepository {
	return &FirebaseCommentRepository{client: client}
}

// Create allocates a push id under comments/ and writes the comment with that
// id embedded, mirroring the push-then-set flow of the widget.
func (r *FirebaseCommentRepository) Create(ctx context.Context, comment *models.Comment) (string, error) {
	ref, err := r.client.NewRef(commentsPath).Push(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("allocate comment id: %w", err)
	}
	comment.ID = ref.Key
	if err := ref.Set(ctx, comment); err != nil {
		return "", fmt.Errorf("write comment %s: %w", ref.Key, err)
	}
	return ref.Key, nil
}

// GetByID retrieves a single comment.
func (r *FirebaseCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.client.NewRef(commentsPath+"/"+id).Get(ctx, &comment); err != nil {
		return nil, fmt.Errorf("read comment %s: %w", id, err)
	}
	if comment.ID == "" {
		return nil, ErrNotFound
	}
	return &comment, nil
}

// List retrieves the full comment collection keyed by id.
func (r *FirebaseCommentRepository) List(ctx context.Context) (map[string]models.Comment, error) {
	var comments map[string]models.Comment
	if err := r.client.NewRef(commentsPath).Get(ctx, &comments); err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}
	if comments == nil {
		comments = map[string]models.Comment{}
	}
	return comments, nil
}

// ListByAuthor retrieves every comment authored by the given user via an
// indexed equality query on userId.
func (r *FirebaseCommentRepository) ListByAuthor(ctx context.Context, userID string) (map[string]models.Comment, error) {
	nodes, err := r.client.NewRef(commentsPath).OrderByChild("userId").EqualTo(userID).GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("query comments by author %s: %w", userID, err)
	}
	comments := make(map[string]models.Comment, len(nodes))
	for _, node := range nodes {
		var comment models.Comment
		if err := node.Unmarshal(&comment); err != nil {
			return nil, fmt.Errorf("decode comment %s: %w", node.Key(), err)
		}
		comments[node.Key()] = comment
	}
	return comments, nil
}

// RemoveAll deletes the given comments, and optionally the pinned-comment
// scalar, in a single multi-path update so a cascade is never observed
// half-applied.
func (r *FirebaseCommentRepository) RemoveAll(ctx context.Context, ids []string, clearPin bool) error {
	if len(ids) == 0 && !clearPin {
		return nil
	}
	updates := make(map[string]interface{}, len(ids)+1)
	for _, id := range ids {
		updates[commentsPath+"/"+id] = nil
	}
	if clearPin {
		updates[pinnedCommentPath] = nil
	}
	if err := r.client.NewRef("/").Update(ctx, updates); err != nil {
		return fmt.Errorf("bulk remove %d comments: %w", len(ids), err)
	}
	return nil
}
