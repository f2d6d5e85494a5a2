package handler

import (
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/paginator"
	"github.com/Gorstka/Yatube/internal/service"
)

// PostPageResponse is a page of rendered posts.
type PostPageResponse = paginator.Page[domain.PostResponse]

// FeedResponse is the body of the main and follow feeds.
type FeedResponse struct {
	Page PostPageResponse `json:"page"`
}

// GroupFeedResponse is the body of a group page.
type GroupFeedResponse struct {
	Group domain.GroupResponse `json:"group"`
	Page  PostPageResponse     `json:"page"`
}

// ProfileResponse is the body of an author page.
type ProfileResponse struct {
	Author         domain.UserResponse `json:"author"`
	PostsCount     int64               `json:"posts_count"`
	FollowersCount int64               `json:"followers_count"`
	FollowingCount int64               `json:"following_count"`
	Following      bool                `json:"following"`
	Page           PostPageResponse    `json:"page"`
}

// PostViewResponse is the body of a single post page.
type PostViewResponse struct {
	Post        domain.PostResponse      `json:"post"`
	PostsCount  int64                    `json:"posts_count"`
	Comments    []domain.CommentResponse `json:"comments"`
	CanEdit     bool                     `json:"can_edit"`
	CommentForm *domain.FormDescriptor   `json:"comment_form,omitempty"`
}

// PageResponse is the body of a static page.
type PageResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func renderPosts(p service.PostPage, images domain.ImageResolver) PostPageResponse {
	return paginator.Map(p, func(post *domain.Post) domain.PostResponse {
		return post.ToResponse(images)
	})
}

func renderComments(comments []*domain.Comment) []domain.CommentResponse {
	out := make([]domain.CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = c.ToResponse()
	}
	return out
}
