// Package thread reconstructs the flat keyed comment collection into the
// ordered render tree the widget displays: one optional pinned root, the
// remaining top-level comments newest-first, and under each root its full
// descendant set flattened depth-first in chronological sibling order.
package thread

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"time"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
)

const unknownUser = "Unknown User"

// Input is the full state snapshot the builder works from. Build never
// mutates it and produces the same Tree for the same Input.
type Input struct {
	Comments map[string]models.Comment
	Users    map[string]models.UserProfile
	PinnedID string
	// Expanded holds the thread-root ids whose replies the viewer has opened.
	// It is client-local presentation state and lives outside the caches so
	// that unrelated snapshot updates cannot reset it.
	Expanded map[string]bool
	// Now is the render instant in epoch millis, used for relative time
	// labels only.
	Now int64
}

// Author is the resolved display identity of a comment's writer.
type Author struct {
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	AvatarURL string      `json:"avatarUrl"`
	Role      models.Role `json:"role"`
}

// Node is one rendered comment. Message, username and mention text are
// HTML-escaped here, before anything reaches a page.
type Node struct {
	ID        string   `json:"id"`
	Author    Author   `json:"author"`
	Message   string   `json:"message,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
	Timestamp int64    `json:"timestamp"`
	TimeLabel string   `json:"timeLabel"`
	ParentID  string   `json:"parentId,omitempty"`
	// Mention names the parent comment's author when the parent is itself a
	// reply, rendered as "> @username" next to the header.
	Mention string `json:"mention,omitempty"`
	Pinned  bool   `json:"pinned,omitempty"`
}

// Root is a top-level comment together with its flattened reply sequence.
type Root struct {
	Node
	Replies      []Node `json:"replies"`
	TotalReplies int    `json:"totalReplies"`
	Expanded     bool   `json:"expanded"`
	// ToggleLabel is the "View N replies" / "Hide N replies" affordance,
	// empty for roots with no replies.
	ToggleLabel string `json:"toggleLabel,omitempty"`
}

// Tree is the ordered render output. Empty distinguishes "no comments yet"
// from a tree that merely has no visible roots.
type Tree struct {
	Empty  bool   `json:"empty"`
	Pinned *Root  `json:"pinned,omitempty"`
	Roots  []Root `json:"roots"`
}

// Build computes the render tree from a full snapshot.
//
// Comments whose parentId names a missing comment are orphans: they are not
// top-level, and their parent can never be found, so they appear nowhere in
// the output. That skip is intended behavior.
func Build(in Input) Tree {
	if len(in.Comments) == 0 {
		return Tree{Empty: true, Roots: []Root{}}
	}

	// Push ids are chronologically ordered, so ascending id order reproduces
	// the store's own collection order and makes the stable sorts below
	// deterministic.
	ids := make([]string, 0, len(in.Comments))
	for id := range in.Comments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	children := map[string][]string{}
	var topIDs []string
	for _, id := range ids {
		c := in.Comments[id]
		if c.IsReply() {
			children[c.ParentID] = append(children[c.ParentID], id)
		} else {
			topIDs = append(topIDs, id)
		}
	}
	for _, siblings := range children {
		sort.SliceStable(siblings, func(i, j int) bool {
			return in.Comments[siblings[i]].Timestamp < in.Comments[siblings[j]].Timestamp
		})
	}

	sort.SliceStable(topIDs, func(i, j int) bool {
		return in.Comments[topIDs[i]].Timestamp > in.Comments[topIDs[j]].Timestamp
	})

	tree := Tree{Roots: []Root{}}
	if in.PinnedID != "" {
		if _, ok := in.Comments[in.PinnedID]; ok {
			pinned := buildRoot(in, children, in.PinnedID)
			tree.Pinned = &pinned
		}
	}
	for _, id := range topIDs {
		if id == in.PinnedID {
			continue
		}
		tree.Roots = append(tree.Roots, buildRoot(in, children, id))
	}
	return tree
}

// TotalReplies counts every direct and indirect reply below the given root.
func TotalReplies(comments map[string]models.Comment, rootID string) int {
	children := map[string][]string{}
	for id, c := range comments {
		if c.IsReply() {
			children[c.ParentID] = append(children[c.ParentID], id)
		}
	}
	return len(flatten(children, rootID))
}

func buildRoot(in Input, children map[string][]string, id string) Root {
	replyIDs := flatten(children, id)
	root := Root{
		Node:         buildNode(in, id),
		Replies:      make([]Node, 0, len(replyIDs)),
		TotalReplies: len(replyIDs),
		Expanded:     in.Expanded[id],
	}
	for _, rid := range replyIDs {
		root.Replies = append(root.Replies, buildNode(in, rid))
	}
	if root.TotalReplies > 0 {
		verb := "View"
		if root.Expanded {
			verb = "Hide"
		}
		root.ToggleLabel = fmt.Sprintf("%s %d replies", verb, root.TotalReplies)
	}
	return root
}

// flatten walks a root's descendants depth-first, keeping each parent's own
// chronological reply order at every level. An explicit stack over the
// prebuilt children index replaces the recursive per-call collection scans of
// the original widget.
func flatten(children map[string][]string, rootID string) []string {
	var out []string
	stack := make([]string, 0, len(children[rootID]))
	for i := len(children[rootID]) - 1; i >= 0; i-- {
		stack = append(stack, children[rootID][i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		kids := children[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

func buildNode(in Input, id string) Node {
	c := in.Comments[id]
	profile := in.Users[c.UserID]
	username := profile.Username
	if username == "" {
		username = unknownUser
	}
	node := Node{
		ID: c.ID,
		Author: Author{
			UserID:    c.UserID,
			Username:  html.EscapeString(username),
			AvatarURL: AvatarURL(profile, username),
			Role:      profile.Role,
		},
		Message:   html.EscapeString(c.Message),
		ImageURLs: c.ImageURLs,
		Timestamp: c.Timestamp,
		TimeLabel: timeLabel(c.Timestamp, in.Now),
		ParentID:  c.ParentID,
		Pinned:    c.ID == in.PinnedID,
	}
	if parent, ok := in.Comments[c.ParentID]; ok && parent.IsReply() {
		parentName := in.Users[parent.UserID].Username
		if parentName == "" {
			parentName = "user"
		}
		node.Mention = "@" + html.EscapeString(parentName)
	}
	return node
}

// AvatarURL returns the profile picture, falling back to a generated
// initials avatar.
func AvatarURL(profile models.UserProfile, fallbackName string) string {
	if profile.ProfilePictureURL != "" {
		return profile.ProfilePictureURL
	}
	name := profile.Username
	if name == "" {
		name = fallbackName
	}
	if name == "" {
		name = "U"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=1a1a1a&color=f0f0f0&bold=true"
}

func timeLabel(ts, now int64) string {
	if ts == 0 {
		return ""
	}
	seconds := (now - ts) / 1000
	if seconds < 60 {
		return "just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	days := hours / 24
	if days <= 7 {
		return fmt.Sprintf("%dd", days)
	}
	return time.UnixMilli(ts).UTC().Format("Jan 2")
}
