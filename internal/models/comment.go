package models

// Comment represents a single message in the discussion. Comments are keyed
// by a generator-assigned push id and never change parent after creation, so
// the reply graph is acyclic by construction.
type Comment struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Timestamp int64    `json:"timestamp"` // epoch millis, assigned by the server at creation
	ParentID  string   `json:"parentId,omitempty"`
	Message   string   `json:"message,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
}

// IsReply reports whether the comment has a parent. A comment is either a
// thread root or a reply, never both.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// CreateCommentRequest defines the request body for posting a new comment.
// A comment needs a message, images, or both; that cross-field rule is
// enforced by the handler.
type CreateCommentRequest struct {
	Message   string   `json:"message" validate:"omitempty,max=2000"`
	ParentID  string   `json:"parentId"`
	ImageURLs []string `json:"imageUrls" validate:"omitempty,max=2,dive,url"`
}
