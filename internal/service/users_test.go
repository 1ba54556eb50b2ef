package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lalith-99/happythoughts/internal/auth"
	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository/repotest"
	"github.com/lalith-99/happythoughts/internal/validator"
)

func newUserService(t *testing.T, repo *repotest.Users) *UserService {
	t.Helper()
	return NewUserService(repo, validator.New(), testSecret, zaptest.NewLogger(t))
}

func TestUserService_Register(t *testing.T) {
	repo := repotest.NewUsers()
	svc := newUserService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     " Ada ",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, "correct horse"))

	claims, err := auth.ParseAccessToken(user.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(t, repotest.NewUsers())
	in := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "ADA@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_RegisterInvalid(t *testing.T) {
	svc := newUserService(t, repotest.NewUsers())

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "password1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "password1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	svc := newUserService(t, repotest.NewUsers())
	registered, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "password1",
	})
	require.NoError(t, err)

	t.Run("ok returns the same token", func(t *testing.T) {
		user, err := svc.Login(context.Background(), LoginInput{Email: "ADA@example.com", Password: "password1"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Equal(t, registered.AccessToken, user.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "password2"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "bob@example.com", Password: "password1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_LoginStoreFailure(t *testing.T) {
	repo := repotest.NewUsers()
	repo.SetErr(errBackend)
	svc := newUserService(t, repo)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "password1"})

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Bearer ", "", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestResolver(t *testing.T) {
	users := repotest.NewUsers()
	token, err := auth.GenerateAccessToken("ada@example.com", testSecret)
	require.NoError(t, err)
	ada := users.Seed(models.User{Name: "Ada", Email: "ada@example.com", AccessToken: token})

	t.Run("absent or other scheme", func(t *testing.T) {
		r := NewResolver(users, nil, zaptest.NewLogger(t))
		for _, h := range []string{"", "Basic xyz", "Bearer "} {
			user, err := r.Resolve(context.Background(), h)
			require.NoError(t, err)
			assert.Nil(t, user)
		}
	})

	t.Run("known token", func(t *testing.T) {
		r := NewResolver(users, nil, zaptest.NewLogger(t))
		user, err := r.Resolve(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, ada.ID, user.ID)
	})

	t.Run("opaque token resolves through the store", func(t *testing.T) {
		grace := users.Seed(models.User{Name: "Grace", Email: "grace@example.com", AccessToken: "3f9a1c0de4b5a6978812aa"})
		r := NewResolver(users, nil, zaptest.NewLogger(t))

		user, err := r.Resolve(context.Background(), "Bearer 3f9a1c0de4b5a6978812aa")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, grace.ID, user.ID)
	})

	t.Run("token minted under another secret resolves when stored", func(t *testing.T) {
		old, err := auth.GenerateAccessToken("linus@example.com", "rotated-out-secret")
		require.NoError(t, err)
		linus := users.Seed(models.User{Name: "Linus", Email: "linus@example.com", AccessToken: old})
		r := NewResolver(users, nil, zaptest.NewLogger(t))

		user, err := r.ResolveToken(context.Background(), old)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, linus.ID, user.ID)
	})

	t.Run("unknown token is looked up and misses", func(t *testing.T) {
		before := users.Lookups()
		r := NewResolver(users, nil, zaptest.NewLogger(t))

		user, err := r.ResolveToken(context.Background(), "not-a-jwt")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, before+1, users.Lookups())
	})

	t.Run("cache is read through", func(t *testing.T) {
		cache := newMemCache()
		r := NewResolver(users, cache, zaptest.NewLogger(t))

		_, err := r.ResolveToken(context.Background(), token)
		require.NoError(t, err)
		before := users.Lookups()

		user, err := r.ResolveToken(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, ada.ID, user.ID)
		assert.Equal(t, before, users.Lookups())
	})

	t.Run("cache write failure is not fatal", func(t *testing.T) {
		cache := newMemCache()
		cache.setErr = errBackend
		r := NewResolver(users, cache, zaptest.NewLogger(t))

		user, err := r.ResolveToken(context.Background(), token)
		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("store failure", func(t *testing.T) {
		broken := repotest.NewUsers()
		broken.SetErr(errBackend)
		r := NewResolver(broken, nil, zaptest.NewLogger(t))

		_, err := r.ResolveToken(context.Background(), token)
		var storeErr *StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}
