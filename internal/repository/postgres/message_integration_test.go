//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lalith-99/happythoughts/internal/db"
	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.New(ctx, url, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(database.Close)
	return database.Pool()
}

func seedMessage(t *testing.T, store *MessageStore, text string) *models.Message {
	t.Helper()
	msg, err := store.Create(context.Background(), text, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.Delete(context.Background(), msg.ID)
	})
	return msg
}

func TestMessageStore_ConcurrentClientLikes(t *testing.T) {
	store := NewMessageStore(testPool(t))
	msg := seedMessage(t, store, "race me")

	const workers = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
		others    = make(chan error, workers)
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.IncrementHeart(context.Background(), msg.ID, repository.Like{ClientID: "c1"})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, repository.ErrAlreadyLiked):
				conflicts.Add(1)
			default:
				others <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(others)

	for err := range others {
		t.Errorf("unexpected error: %v", err)
	}
	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, workers-1, conflicts.Load())

	stored, err := store.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.HeartCount)
	assert.Equal(t, []string{"c1"}, stored.LikedByClientIDs)
}

func TestMessageStore_ConcurrentDistinctClients(t *testing.T) {
	store := NewMessageStore(testPool(t))
	msg := seedMessage(t, store, "everyone likes this")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.IncrementHeart(context.Background(), msg.ID, repository.Like{ClientID: fmt.Sprintf("client-%d", i)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	stored, err := store.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.HeartCount)
	assert.Len(t, stored.LikedByClientIDs, workers)
}

func TestMessageStore_RepeatedUserLikes(t *testing.T) {
	store := NewMessageStore(testPool(t))
	msg := seedMessage(t, store, "like me again")
	userID := uuid.NewString()

	var last *models.Message
	for i := 0; i < 3; i++ {
		var err error
		last, err = store.IncrementHeart(context.Background(), msg.ID, repository.Like{UserID: userID})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, last.HeartCount)
	assert.Equal(t, []string{userID}, last.LikedByUserIDs)
	assert.Empty(t, last.LikedByClientIDs)

	other := uuid.NewString()
	last, err := store.IncrementHeart(context.Background(), msg.ID, repository.Like{UserID: other})
	require.NoError(t, err)
	assert.Equal(t, 4, last.HeartCount)
	assert.Equal(t, []string{userID, other}, last.LikedByUserIDs)
}

func TestMessageStore_IncrementHeartMissing(t *testing.T) {
	store := NewMessageStore(testPool(t))
	ctx := context.Background()

	msg, err := store.Create(ctx, "short lived", nil)
	require.NoError(t, err)
	_, err = store.Delete(ctx, msg.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		like repository.Like
		want error
	}{
		{"deleted, client", msg.ID, repository.Like{ClientID: "c1"}, repository.ErrNotFound},
		{"deleted, user", msg.ID, repository.Like{UserID: uuid.NewString()}, repository.ErrNotFound},
		{"unknown id", uuid.NewString(), repository.Like{ClientID: "c1"}, repository.ErrNotFound},
		{"malformed id", "not-a-uuid", repository.Like{ClientID: "c1"}, repository.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.IncrementHeart(ctx, tt.id, tt.like)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserStore_Roundtrip(t *testing.T) {
	pool := testPool(t)
	store := NewUserStore(pool)
	ctx := context.Background()

	suffix := uuid.NewString()
	user, err := store.Create(ctx, models.User{
		Name:         "Ada",
		Email:        "ada-" + suffix + "@example.com",
		PasswordHash: "hash",
		AccessToken:  "opaque-" + suffix,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})

	found, err := store.FindByAccessToken(ctx, "opaque-"+suffix)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := store.FindByAccessToken(ctx, "opaque-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.Create(ctx, models.User{
		Name:         "Ada again",
		Email:        user.Email,
		PasswordHash: "hash",
		AccessToken:  "other-" + suffix,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
