package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/upstream"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// StorefrontService fronts the upstream storefront API for catalog, forum,
// and profile reads, and the write flows that depend on them.
type StorefrontService struct {
	upstream   *upstream.Client
	producer   *event.Producer
	logger     *slog.Logger
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewStorefrontService creates a storefront service.
func NewStorefrontService(up *upstream.Client, producer *event.Producer, logger *slog.Logger, jwtSecret string, sessionTTL time.Duration) *StorefrontService {
	return &StorefrontService{
		upstream:   up,
		producer:   producer,
		logger:     logger,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

// Products fetches the product catalog.
func (s *StorefrontService) Products(ctx context.Context) ([]domain.Product, error) {
	return await(ctx, s.upstream.Products(ctx))
}

// Product fetches one product.
func (s *StorefrontService) Product(ctx context.Context, productID string) (domain.Product, error) {
	if productID == "" {
		return domain.Product{}, apperrors.InvalidInput("product id is required")
	}
	return await(ctx, s.upstream.Product(ctx, productID))
}

// Reviews fetches the reviews for a product.
func (s *StorefrontService) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return await(ctx, s.upstream.Reviews(ctx, productID))
}

// SubmitReview posts a product review upstream.
func (s *StorefrontService) SubmitReview(ctx context.Context, productID string, input upstream.ReviewInput) (domain.Review, error) {
	if productID == "" {
		return domain.Review{}, apperrors.InvalidInput("product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return domain.Review{}, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	return await(ctx, s.upstream.SubmitReview(ctx, productID, input))
}

// Boards fetches the message board list.
func (s *StorefrontService) Boards(ctx context.Context) ([]domain.Board, error) {
	return await(ctx, s.upstream.Boards(ctx))
}

// Posts fetches the posts on a board.
func (s *StorefrontService) Posts(ctx context.Context, boardID string) ([]domain.Post, error) {
	if boardID == "" {
		return nil, apperrors.InvalidInput("board id is required")
	}
	return await(ctx, s.upstream.Posts(ctx, boardID))
}

// CreatePost adds a post to a board.
func (s *StorefrontService) CreatePost(ctx context.Context, boardID string, input upstream.PostInput) (domain.Post, error) {
	if boardID == "" {
		return domain.Post{}, apperrors.InvalidInput("board id is required")
	}
	if input.Title == "" {
		return domain.Post{}, apperrors.InvalidInput("title is required")
	}
	return await(ctx, s.upstream.CreatePost(ctx, boardID, input))
}

// User fetches a user profile.
func (s *StorefrontService) User(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, apperrors.InvalidInput("user id is required")
	}
	return await(ctx, s.upstream.User(ctx, userID))
}

// SignIn exchanges credentials for a session. Upstream rejection is surfaced
// as 401 with the upstream reason, not as a gateway failure. The returned
// token is minted locally so protected routes verify it without another
// upstream round trip.
func (s *StorefrontService) SignIn(ctx context.Context, creds upstream.Credentials) (domain.Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return domain.Session{}, apperrors.InvalidInput("username and password are required")
	}

	session, err := await(ctx, s.upstream.SignIn(ctx, creds))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == "BAD_GATEWAY" {
			return domain.Session{}, apperrors.Unauthorized(appErr.Message)
		}
		return domain.Session{}, err
	}

	token, err := s.mintSessionToken(session.User)
	if err != nil {
		return domain.Session{}, apperrors.Internal(err)
	}
	session.Token = token

	s.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", session.User.ID),
		slog.Bool("admin", session.User.IsAdmin()),
	)
	return session, nil
}

func (s *StorefrontService) mintSessionToken(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// RecordVote submits a vote and then refetches the board's posts so the
// caller renders fresh tallies. The refetch is initiated inside the vote
// resource's success callback: overlapping resources carry no ordering
// guarantee, so dependent operations are sequenced by nesting.
func (s *StorefrontService) RecordVote(ctx context.Context, boardID, postID, userID, direction string) ([]domain.Post, error) {
	if boardID == "" || postID == "" {
		return nil, apperrors.InvalidInput("board id and post id are required")
	}
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return nil, apperrors.InvalidInput("direction must be up or down")
	}

	done := make(chan outcome[[]domain.Post], 1)

	voteRes := s.upstream.SubmitVote(ctx, postID, upstream.VoteInput{
		UserID:    userID,
		Direction: direction,
	})

	voteRes.Subscribe(
		func(vote domain.Vote) {
			if err := s.producer.PublishVoteRecorded(ctx, vote); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish post.vote.recorded event",
					slog.String("post_id", postID),
					slog.String("error", err.Error()),
				)
			}

			postsRes := s.upstream.Posts(ctx, boardID)
			postsRes.Subscribe(
				func(posts []domain.Post) { done <- outcome[[]domain.Post]{value: posts} },
				func(reason string) { done <- outcome[[]domain.Post]{reason: reason, failed: true} },
			)
		},
		func(reason string) {
			done <- outcome[[]domain.Post]{reason: reason, failed: true}
		},
	)

	select {
	case o := <-done:
		if o.failed {
			return nil, upstreamError(o.reason)
		}
		return o.value, nil
	case <-ctx.Done():
		// Cancelling the vote resource suppresses its callback; the nested
		// refetch, if already started, shares ctx and aborts with it.
		voteRes.Cancel()
		return nil, ctx.Err()
	}
}
