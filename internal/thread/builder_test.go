package thread_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/thread"
)

func comment(id, userID, parentID string, ts int64) models.Comment {
	return models.Comment{ID: id, UserID: userID, ParentID: parentID, Timestamp: ts}
}

func users() map[string]models.UserProfile {
	return map[string]models.UserProfile{
		"u1": {Role: models.RoleUser, Username: "alice"},
		"u2": {Role: models.RoleUser, Username: "bob"},
		"u3": {Role: models.RoleAdmin, Username: "carol"},
	}
}

func TestBuildNestedReplyChain(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"B": comment("B", "u2", "A", 200),
		"C": comment("C", "u3", "B", 300),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users()})

	require.False(t, tree.Empty)
	require.Nil(t, tree.Pinned)
	require.Len(t, tree.Roots, 1)

	root := tree.Roots[0]
	assert.Equal(t, "A", root.ID)
	require.Len(t, root.Replies, 2)
	assert.Equal(t, "B", root.Replies[0].ID)
	assert.Equal(t, "C", root.Replies[1].ID)
	assert.Equal(t, 2, root.TotalReplies)

	// C replies to B, which is itself a reply, so C mentions B's author.
	assert.Empty(t, root.Replies[0].Mention)
	assert.Equal(t, "@bob", root.Replies[1].Mention)

	assert.Equal(t, 2, thread.TotalReplies(comments, "A"))
	assert.Equal(t, 1, thread.TotalReplies(comments, "B"))
	assert.Equal(t, 0, thread.TotalReplies(comments, "C"))
}

func TestBuildPinnedRootRendersFirst(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"B": comment("B", "u2", "A", 200),
		"C": comment("C", "u3", "B", 300),
		"D": comment("D", "u2", "", 50),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users(), PinnedID: "A"})

	require.NotNil(t, tree.Pinned)
	assert.Equal(t, "A", tree.Pinned.ID)
	assert.True(t, tree.Pinned.Pinned)
	assert.Equal(t, 2, tree.Pinned.TotalReplies)

	// The pinned root is excluded from the normal newest-first ordering.
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "D", tree.Roots[0].ID)
}

func TestBuildTopLevelNewestFirstSiblingsOldestFirst(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"B": comment("B", "u2", "", 300),
		"C": comment("C", "u3", "", 200),
		"R1": comment("R1", "u2", "B", 500),
		"R2": comment("R2", "u1", "B", 400),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users()})

	require.Len(t, tree.Roots, 3)
	assert.Equal(t, "B", tree.Roots[0].ID)
	assert.Equal(t, "C", tree.Roots[1].ID)
	assert.Equal(t, "A", tree.Roots[2].ID)

	require.Len(t, tree.Roots[0].Replies, 2)
	assert.Equal(t, "R2", tree.Roots[0].Replies[0].ID)
	assert.Equal(t, "R1", tree.Roots[0].Replies[1].ID)
}

func TestBuildEmptyCollection(t *testing.T) {
	tree := thread.Build(thread.Input{Comments: map[string]models.Comment{}, Users: users()})
	assert.True(t, tree.Empty)
	assert.Empty(t, tree.Roots)
	assert.Nil(t, tree.Pinned)
}

func TestBuildOrphanReplyInvisible(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"X": comment("X", "u2", "missing", 200),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users()})

	require.False(t, tree.Empty)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "A", tree.Roots[0].ID)
	assert.Empty(t, tree.Roots[0].Replies)
}

func TestBuildPinnedIDReferencingMissingCommentIgnored(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users(), PinnedID: "gone"})

	assert.Nil(t, tree.Pinned)
	require.Len(t, tree.Roots, 1)
}

func TestBuildExpansionState(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"B": comment("B", "u2", "A", 200),
		"D": comment("D", "u2", "", 50),
	}

	tree := thread.Build(thread.Input{
		Comments: comments,
		Users:    users(),
		Expanded: map[string]bool{"A": true},
	})

	require.Len(t, tree.Roots, 2)
	expanded := tree.Roots[0]
	assert.Equal(t, "A", expanded.ID)
	assert.True(t, expanded.Expanded)
	assert.Equal(t, "Hide 1 replies", expanded.ToggleLabel)

	// A root with no replies shows no toggle affordance at all.
	collapsed := tree.Roots[1]
	assert.Equal(t, "D", collapsed.ID)
	assert.False(t, collapsed.Expanded)
	assert.Empty(t, collapsed.ToggleLabel)
}

func TestBuildCollapsedToggleLabel(t *testing.T) {
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", 100),
		"B": comment("B", "u2", "A", 200),
		"C": comment("C", "u3", "A", 300),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users()})
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "View 2 replies", tree.Roots[0].ToggleLabel)
}

func TestBuildDeterministic(t *testing.T) {
	comments := map[string]models.Comment{
		"A":  comment("A", "u1", "", 100),
		"B":  comment("B", "u2", "", 100), // timestamp tie with A
		"R1": comment("R1", "u3", "A", 200),
		"R2": comment("R2", "u2", "A", 200), // tie within the sibling group
	}

	in := thread.Input{Comments: comments, Users: users()}
	first := thread.Build(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, thread.Build(in))
	}

	// Ties resolve in collection (id) order.
	require.Len(t, first.Roots, 2)
	assert.Equal(t, "A", first.Roots[0].ID)
	assert.Equal(t, "B", first.Roots[1].ID)
	require.Len(t, first.Roots[0].Replies, 2)
	assert.Equal(t, "R1", first.Roots[0].Replies[0].ID)
	assert.Equal(t, "R2", first.Roots[0].Replies[1].ID)
}

func TestBuildEscapesAndFallsBack(t *testing.T) {
	comments := map[string]models.Comment{
		"A": {ID: "A", UserID: "ghost", Timestamp: 100, Message: "<script>alert(1)</script>"},
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users()})

	require.Len(t, tree.Roots, 1)
	node := tree.Roots[0].Node
	assert.Equal(t, "Unknown User", node.Author.Username)
	assert.Contains(t, node.Author.AvatarURL, "ui-avatars.com")
	assert.NotContains(t, node.Message, "<script>")
	assert.Contains(t, node.Message, "&lt;script&gt;")
}

func TestBuildTimeLabels(t *testing.T) {
	now := int64(1_700_000_000_000)
	comments := map[string]models.Comment{
		"A": comment("A", "u1", "", now-30*1000),
		"B": comment("B", "u1", "", now-5*60*1000),
		"C": comment("C", "u1", "", now-3*60*60*1000),
		"D": comment("D", "u1", "", now-2*24*60*60*1000),
	}

	tree := thread.Build(thread.Input{Comments: comments, Users: users(), Now: now})

	labels := map[string]string{}
	for _, root := range tree.Roots {
		labels[root.ID] = root.TimeLabel
	}
	assert.Equal(t, "just now", labels["A"])
	assert.Equal(t, "5m", labels["B"])
	assert.Equal(t, "3h", labels["C"])
	assert.Equal(t, "2d", labels["D"])
}
