package repositories

import "errors"

// Paths of the four collections under the database root.
const (
	usersPath         = "users"
	commentsPath      = "comments"
	bannedUsersPath   = "bannedUsers"
	pinnedCommentPath = "pinnedComment"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")
