package pubsub

// ChannelEvents carries every site event. Kafka maps it to the topic
// "yatube-events" and keys each message by Event.Subject.
const ChannelEvents = "yatube:events"

// Event types published by the site.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventCommentCreated = "comment.created"
	EventFollowCreated  = "follow.created"
	EventFollowDeleted  = "follow.deleted"
)

// PostPayload is sent when a post is created or edited.
type PostPayload struct {
	PostID    uint   `json:"post_id"`
	Author    string `json:"author"`
	GroupSlug string `json:"group_slug,omitempty"`
	HasImage  bool   `json:"has_image"`
}

// CommentPayload is sent when a comment is added to a post.
type CommentPayload struct {
	CommentID uint   `json:"comment_id"`
	PostID    uint   `json:"post_id"`
	Author    string `json:"author"`
}

// FollowPayload is sent when a follow edge appears or disappears.
type FollowPayload struct {
	User   string `json:"user"`
	Author string `json:"author"`
}
