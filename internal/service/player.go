package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"chess-directory/internal/api"
	"chess-directory/internal/apierr"
	"chess-directory/internal/cache"
	"chess-directory/internal/constants"
	"chess-directory/internal/domain"
)

// PlayerService layers the staleness cache and the bounded retry
// policy on top of the raw chess.com client.
type PlayerService struct {
	chess  *api.ChessClient
	cache  *cache.Store
	logger zerolog.Logger
}

func NewPlayerService(chess *api.ChessClient, store *cache.Store, logger zerolog.Logger) *PlayerService {
	return &PlayerService{chess: chess, cache: store, logger: logger}
}

// GetGrandmasters returns the full ordered GM username list, cached
// for the directory staleness window.
func (s *PlayerService) GetGrandmasters(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	value, err := s.cache.GetOrLoad(ctx, "titled:GM", constants.DirectoryCacheTTL, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, "titled players", func(ctx context.Context) (any, error) {
			return s.chess.GetTitledPlayers(ctx)
		})
	})
	if err != nil {
		return nil, err
	}

	players, ok := value.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload type %T", value)
	}
	s.logger.Debug().Int("count", len(players)).Msg("grandmaster list ready")
	return players, nil
}

// GetProfile returns one player's profile, cached per username.
func (s *PlayerService) GetProfile(ctx context.Context, username string) (*domain.PlayerProfile, error) {
	key := "player:" + strings.ToLower(username)
	value, err := s.cache.GetOrLoad(ctx, key, constants.PlayerCacheTTL, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, "player profile", func(ctx context.Context) (any, error) {
			return s.chess.GetPlayerProfile(ctx, username)
		})
	})
	if err != nil {
		return nil, err
	}

	profile, ok := value.(*domain.PlayerProfile)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload type %T", value)
	}
	return profile, nil
}

// GetPlayerData returns the combined profile-plus-stats aggregate.
// The whole aggregate shares one cache entry per (username, stats)
// pair so a stats-free hit never masks a stats request.
func (s *PlayerService) GetPlayerData(ctx context.Context, username string, includeStats bool) (*domain.PlayerDataResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("player-data:%s:%t", strings.ToLower(username), includeStats)
	value, err := s.cache.GetOrLoad(ctx, key, constants.PlayerCacheTTL, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, "player data", func(ctx context.Context) (any, error) {
			return s.chess.GetPlayerData(ctx, username, includeStats)
		})
	})
	if err != nil {
		return nil, err
	}

	data, ok := value.(*domain.PlayerDataResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload type %T", value)
	}
	return data, nil
}

// fetch runs one upstream operation under the retry policy: transient
// failures get up to RetryMaxAttempts extra attempts with exponential
// backoff, not-found and validation failures return immediately.
func (s *PlayerService) fetch(ctx context.Context, op string, fn func(context.Context) (any, error)) (any, error) {
	backoff := retry.WithCappedDuration(constants.RetryMaxDelay, retry.NewExponential(constants.RetryBaseDelay))
	backoff = retry.WithMaxRetries(constants.RetryMaxAttempts, backoff)

	var result any
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		value, err := fn(apiCtx)
		if err != nil {
			if apierr.IsRetryable(err) {
				s.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("upstream fetch failed, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("op", op).Int("attempts", attempt).Msg("upstream fetch failed")
		return nil, err
	}
	return result, nil
}
