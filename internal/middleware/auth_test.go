package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/util"
)

type mockAccountRepo struct {
	findByTokenHashFunc func(ctx context.Context, tokenHash string) (*model.Account, error)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Account, error) {
	if m.findByTokenHashFunc != nil {
		return m.findByTokenHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func TestAuthMiddleware(t *testing.T) {
	okHandler := func(gotAccount **model.Account) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*gotAccount = GetAccount(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("rejects a request without a token", func(t *testing.T) {
		mw := NewAuthMiddleware(&mockAccountRepo{})
		var got *model.Account

		req := httptest.NewRequest(http.MethodGet, "/api/discord/status", nil)
		rec := httptest.NewRecorder()
		mw.Handler(okHandler(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		mw := NewAuthMiddleware(&mockAccountRepo{})

		req := httptest.NewRequest(http.MethodGet, "/api/discord/status", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		var got *model.Account
		mw.Handler(okHandler(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects non-bearer authorization schemes", func(t *testing.T) {
		mw := NewAuthMiddleware(&mockAccountRepo{})

		req := httptest.NewRequest(http.MethodGet, "/api/discord/status", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		var got *model.Account
		mw.Handler(okHandler(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reports database failures as server errors", func(t *testing.T) {
		repo := &mockAccountRepo{
			findByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.Account, error) {
				return nil, errors.New("connection refused")
			},
		}
		mw := NewAuthMiddleware(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/discord/status", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		var got *model.Account
		mw.Handler(okHandler(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("resolves the account by token hash and injects it", func(t *testing.T) {
		token := "valid-token"
		account := &model.Account{ID: "acc1", RateLimitPerMin: 60}
		repo := &mockAccountRepo{
			findByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.Account, error) {
				if tokenHash == util.HashToken(token) {
					return account, nil
				}
				return nil, nil
			},
		}
		mw := NewAuthMiddleware(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/discord/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		var got *model.Account
		mw.Handler(okHandler(&got)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "acc1", got.ID)
	})
}

func TestGetAccount(t *testing.T) {
	t.Run("returns nil on an empty context", func(t *testing.T) {
		assert.Nil(t, GetAccount(context.Background()))
	})

	t.Run("returns the stored account", func(t *testing.T) {
		account := &model.Account{ID: "acc1"}
		ctx := context.WithValue(context.Background(), AccountContextKey, account)
		assert.Equal(t, account, GetAccount(ctx))
	})
}
