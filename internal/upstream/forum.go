package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/remote"
)

// Boards fetches the message board list.
func (c *Client) Boards(ctx context.Context) *remote.Resource[[]domain.Board] {
	d := remote.MustDescriptor(http.MethodGet, "/api/boards")
	return remote.Initiate[[]domain.Board](ctx, c.transport, d, "boards")
}

// Posts fetches the posts on a board.
func (c *Client) Posts(ctx context.Context, boardID string) *remote.Resource[[]domain.Post] {
	d := remote.MustDescriptor(http.MethodGet, "/api/boards/"+url.PathEscape(boardID)+"/posts")
	return remote.Initiate[[]domain.Post](ctx, c.transport, d, "posts")
}

// PostInput is the payload for creating a board post.
type PostInput struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CreatePost adds a post to a board.
func (c *Client) CreatePost(ctx context.Context, boardID string, input PostInput) *remote.Resource[domain.Post] {
	d := remote.MustDescriptor(http.MethodPost, "/api/boards/"+url.PathEscape(boardID)+"/posts").
		WithBody(input).
		WithCredentials()
	return remote.Initiate[domain.Post](ctx, c.transport, d, "post")
}

// VoteInput is the payload for submitting a post vote.
type VoteInput struct {
	UserID    string `json:"user_id"`
	Direction string `json:"direction"`
}

// SubmitVote records a vote on a post.
func (c *Client) SubmitVote(ctx context.Context, postID string, input VoteInput) *remote.Resource[domain.Vote] {
	d := remote.MustDescriptor(http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/votes").
		WithBody(input).
		WithCredentials()
	return remote.Initiate[domain.Vote](ctx, c.transport, d, "vote")
}
