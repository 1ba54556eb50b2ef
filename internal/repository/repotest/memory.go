// Package repotest provides in-memory repositories for tests.
//
// Every method holds the store's lock for its whole duration, so
// IncrementHeart is as atomic as the real conditional updates. Ids are
// UUIDs; anything else is ErrInvalidID.
package repotest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

// Messages is an in-memory repository.MessageRepository. Setting Err makes
// every call fail with it.
type Messages struct {
	mu   sync.Mutex
	byID map[string]*models.Message
	Err  error
}

func NewMessages() *Messages {
	return &Messages{byID: make(map[string]*models.Message)}
}

func cloneMessage(m *models.Message) *models.Message {
	c := *m
	c.LikedByUserIDs = slices.Clone(m.LikedByUserIDs)
	c.LikedByClientIDs = slices.Clone(m.LikedByClientIDs)
	c.Normalize()
	return &c
}

func (r *Messages) fail() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Err
}

// SetErr is the locked form of assigning Err.
func (r *Messages) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *Messages) lookup(id string) (*models.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (r *Messages) Create(_ context.Context, text string, authorID *string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m := &models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
		AuthorID:  authorID,
	}
	r.byID[m.ID] = m
	return cloneMessage(m), nil
}

func (r *Messages) GetByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return cloneMessage(m), nil
}

// List honours the hearts filter and sorts like the real stores.
func (r *Messages) List(_ context.Context, opts repository.ListOptions) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	opts = opts.WithDefaults()

	out := make([]models.Message, 0, len(r.byID))
	for _, m := range r.byID {
		switch opts.Hearts {
		case repository.HeartsSome:
			if m.HeartCount == 0 {
				continue
			}
		case repository.HeartsNone:
			if m.HeartCount != 0 {
				continue
			}
		}
		out = append(out, *cloneMessage(m))
	}

	slices.SortFunc(out, func(a, b models.Message) int {
		var c int
		if opts.Sort == repository.SortByHearts {
			c = a.HeartCount - b.HeartCount
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if opts.Order == repository.SortDesc {
			c = -c
		}
		return c
	})
	return out, nil
}

func (r *Messages) IncrementHeart(_ context.Context, id string, like repository.Like) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	switch {
	case like.ClientID != "":
		if slices.Contains(m.LikedByClientIDs, like.ClientID) {
			return nil, repository.ErrAlreadyLiked
		}
		m.LikedByClientIDs = append(m.LikedByClientIDs, like.ClientID)
	case like.UserID != "":
		if !slices.Contains(m.LikedByUserIDs, like.UserID) {
			m.LikedByUserIDs = append(m.LikedByUserIDs, like.UserID)
		}
	}
	m.HeartCount++
	return cloneMessage(m), nil
}

func (r *Messages) Delete(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	delete(r.byID, id)
	return cloneMessage(m), nil
}

func (r *Messages) Ping(context.Context) error { return r.fail() }

// Seed stores m as is, assigning an id if it has none.
func (r *Messages) Seed(m models.Message) *models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.byID[m.ID] = &m
	return cloneMessage(&m)
}

// Users is an in-memory repository.UserRepository. Lookups counts
// FindByAccessToken calls.
type Users struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	Err     error
	lookups int
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*models.User)}
}

func (r *Users) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *Users) Lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

func (r *Users) Create(_ context.Context, u models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email || existing.AccessToken == u.AccessToken {
			return nil, repository.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	r.byID[u.ID] = &u
	c := u
	return &c, nil
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByAccessToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.AccessToken == token {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// Seed stores u as is, assigning an id if it has none.
func (r *Users) Seed(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.byID[u.ID] = &u
	c := u
	return &c
}

var (
	_ repository.MessageRepository = (*Messages)(nil)
	_ repository.UserRepository    = (*Users)(nil)
)
