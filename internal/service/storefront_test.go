package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/upstream"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const testJWTSecret = "test-secret"

func newStorefrontService(upstreamURL string, pub *capturingPublisher) *StorefrontService {
	return NewStorefrontService(newUpstreamClient(upstreamURL), event.NewProducer(pub, newTestLogger()), newTestLogger(), testJWTSecret, time.Hour)
}

func TestProducts_ReturnsCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Write([]byte(`{"status":"OK","results":{"products":[
			{"id":"p1","name":"Widget"},{"id":"p2","name":"Gadget"}]}}`))
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	products, err := svc.Products(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestProducts_EmptyCatalogIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":{}}`))
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	products, err := svc.Products(context.Background())

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProduct_UpstreamErrorCarriesReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","message":"no such product"}`))
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	_, err := svc.Product(context.Background(), "p404")

	require.ErrorIs(t, err, apperrors.ErrUpstreamFailed)
	assert.Contains(t, err.Error(), "no such product")
}

func TestSubmitReview_RejectsOutOfRangeRating(t *testing.T) {
	svc := newStorefrontService("http://unused", &capturingPublisher{})

	_, err := svc.SubmitReview(context.Background(), "p1", upstream.ReviewInput{Rating: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.SubmitReview(context.Background(), "p1", upstream.ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSignIn_MintsLocalSessionToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":{"session":{
			"token":"upstream-opaque-token",
			"user":{"id":"u1","username":"ada","role":"member"}}}}`))
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	session, err := svc.SignIn(context.Background(), upstream.Credentials{Username: "ada", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)
	require.NotEqual(t, "upstream-opaque-token", session.Token, "the served token must be locally verifiable")

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "member", claims["role"])
}

func TestSignIn_UpstreamRejectionIs401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"ERROR","message":"bad credentials"}`))
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	_, err := svc.SignIn(context.Background(), upstream.Credentials{Username: "ada", Password: "wrong"})

	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestRecordVote_SubmitsThenRefetchesPosts(t *testing.T) {
	var mu sync.Mutex
	var order []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/api/posts/post-1/votes":
			w.Write([]byte(`{"status":"OK","results":{"vote":{"id":"v1","post_id":"post-1","user_id":"u1","direction":"up"}}}`))
		case "/api/boards/b1/posts":
			w.Write([]byte(`{"status":"OK","results":{"posts":[{"id":"post-1","upvotes":8}]}}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	pub := &capturingPublisher{}
	svc := newStorefrontService(server.URL, pub)

	posts, err := svc.RecordVote(context.Background(), "b1", "post-1", "u1", domain.VoteUp)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 8, posts[0].Upvotes)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"POST /api/posts/post-1/votes",
		"GET /api/boards/b1/posts",
	}, order, "the refetch must start only after the vote succeeds")

	assert.Equal(t, []string{event.TopicVoteRecorded}, pub.types())
}

func TestRecordVote_VoteFailureSkipsRefetch(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"status":"ERROR","message":"already voted"}`))
	}))
	defer server.Close()

	pub := &capturingPublisher{}
	svc := newStorefrontService(server.URL, pub)

	_, err := svc.RecordVote(context.Background(), "b1", "post-1", "u1", domain.VoteDown)

	require.ErrorIs(t, err, apperrors.ErrUpstreamFailed)
	assert.Contains(t, err.Error(), "already voted")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/posts/post-1/votes"}, paths)
	assert.Empty(t, pub.types())
}

func TestRecordVote_RejectsInvalidDirection(t *testing.T) {
	svc := newStorefrontService("http://unused", &capturingPublisher{})

	_, err := svc.RecordVote(context.Background(), "b1", "post-1", "u1", "sideways")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRecordVote_ContextCancellationAbortsInFlightVote(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	svc := newStorefrontService(server.URL, &capturingPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := svc.RecordVote(ctx, "b1", "post-1", "u1", domain.VoteUp)
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		// Depending on which side observes the cancellation first this is
		// either ctx.Err() or the aborted transport error.
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RecordVote did not return after cancellation")
	}
}

func TestBoardsAndPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/boards":
			w.Write([]byte(`{"status":"OK","results":{"boards":[{"id":"b1","name":"General"}]}}`))
		case "/api/boards/b1/posts":
			w.Write([]byte(`{"status":"OK","results":{"posts":[{"id":"post-1","title":"hello"}]}}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	svc := newStorefrontService(server.URL, &capturingPublisher{})
	ctx := context.Background()

	boards, err := svc.Boards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "General", boards[0].Name)

	posts, err := svc.Posts(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Title)
}

func TestCreatePost_RequiresTitle(t *testing.T) {
	svc := newStorefrontService("http://unused", &capturingPublisher{})

	_, err := svc.CreatePost(context.Background(), "b1", upstream.PostInput{UserID: "u1", Body: "text"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
