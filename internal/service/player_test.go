package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-directory/internal/api"
	"chess-directory/internal/apierr"
	"chess-directory/internal/cache"
	"chess-directory/internal/config"
)

const profileJSON = `{
	"country": "US",
	"followers": 42,
	"joined": 1389043258,
	"last_online": 1717000000,
	"player_id": 15448422,
	"status": "premium",
	"url": "https://www.chess.com/member/Hikaru",
	"username": "hikaru"
}`

func newTestService(t *testing.T, handler http.Handler) *PlayerService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client := api.NewChessClient(&config.Config{ChessAPIBaseURL: ts.URL}, zerolog.Nop())
	store := cache.NewStore(time.Minute, 0)
	t.Cleanup(store.Close)

	return NewPlayerService(client, store, zerolog.Nop())
}

func TestGetGrandmastersRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"players":["hikaru","magnuscarlsen"]}`))
	}))

	players, err := svc.GetGrandmasters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hikaru", "magnuscarlsen"}, players)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetProfileDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := svc.GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetProfileDoesNotRetryValidationFailure(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"followers": -1, "username": "hikaru"}`))
	}))

	_, err := svc.GetProfile(context.Background(), "hikaru")
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetProfileGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := svc.GetProfile(context.Background(), "hikaru")
	require.Error(t, err)

	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP_500", apiErr.Code)
	// one initial attempt plus the configured extras
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetProfileServesSecondCallFromCache(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profileJSON))
	}))

	first, err := svc.GetProfile(context.Background(), "Hikaru")
	require.NoError(t, err)
	// cache keys are case-insensitive on the username
	second, err := svc.GetProfile(context.Background(), "hikaru")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetPlayerDataCachesPerStatsFlag(t *testing.T) {
	var profileCalls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/player/hikaru":
			profileCalls.Add(1)
			_, _ = w.Write([]byte(profileJSON))
		case "/player/hikaru/stats":
			_, _ = w.Write([]byte(`{"chess_blitz":{"last":{"rating":3225,"date":1717000000}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	bare, err := svc.GetPlayerData(context.Background(), "hikaru", false)
	require.NoError(t, err)
	assert.Nil(t, bare.Stats)

	// a stats-free cache hit must not satisfy a stats request
	withStats, err := svc.GetPlayerData(context.Background(), "hikaru", true)
	require.NoError(t, err)
	require.NotNil(t, withStats.Stats)
	assert.Equal(t, 3225, withStats.Stats.Blitz.Last.Rating)

	assert.Equal(t, int32(2), profileCalls.Load())
}

func TestGetGrandmastersServesSecondCallFromCache(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"players":["hikaru"]}`))
	}))

	_, err := svc.GetGrandmasters(context.Background())
	require.NoError(t, err)
	_, err = svc.GetGrandmasters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}
