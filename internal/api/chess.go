package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"chess-directory/internal/apierr"
	"chess-directory/internal/config"
	"chess-directory/internal/domain"
	"chess-directory/internal/schema"
)

// ChessClient talks to the public chess.com directory API. It is
// stateless beyond the fixed base URL; every outcome is classified
// into the apierr taxonomy before it reaches a caller.
type ChessClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewChessClient(cfg *config.Config, logger zerolog.Logger) *ChessClient {
	return &ChessClient{
		baseURL: strings.TrimRight(cfg.ChessAPIBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// GetTitledPlayers lists the usernames currently holding the GM title,
// in upstream order.
func (c *ChessClient) GetTitledPlayers(ctx context.Context) ([]string, error) {
	url := c.baseURL + "/titled/GM"
	resp, err := doRequest[domain.TitledResponse](ctx, c, url, "titled players")
	if err != nil {
		return nil, err
	}
	return resp.Players, nil
}

func (c *ChessClient) GetPlayerProfile(ctx context.Context, username string) (*domain.PlayerProfile, error) {
	url := fmt.Sprintf("%s/player/%s", c.baseURL, strings.ToLower(username))
	return doRequest[domain.PlayerProfile](ctx, c, url, "player profile")
}

func (c *ChessClient) GetPlayerStats(ctx context.Context, username string) (*domain.PlayerStats, error) {
	if err := schema.ValidateUsername(username); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/player/%s/stats", c.baseURL, strings.ToLower(username))
	return doRequest[domain.PlayerStats](ctx, c, url, "player stats")
}

// GetPlayerData fetches the profile and, when requested, the stats in
// parallel and waits for both to settle. The profile is mandatory;
// stats are best-effort and a stats failure only costs the stats.
func (c *ChessClient) GetPlayerData(ctx context.Context, username string, includeStats bool) (*domain.PlayerDataResponse, error) {
	var (
		profile *domain.PlayerProfile
		stats   *domain.PlayerStats
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		profile, err = c.GetPlayerProfile(ctx, username)
		return err
	})
	if includeStats {
		g.Go(func() error {
			s, err := c.GetPlayerStats(ctx, username)
			if err != nil {
				c.logger.Warn().Err(err).Str("username", username).Msg("stats fetch failed, continuing without stats")
				return nil
			}
			stats = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.PlayerDataResponse{Profile: profile, Stats: stats}, nil
}

type defaulter interface {
	ApplyDefaults()
}

func doRequest[T any](ctx context.Context, c *ChessClient, url, what string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("upstream request failed")
		return nil, apierr.Network(err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		// The error body may carry a JSON payload; keep it when it
		// parses, keep the details empty when it does not.
		details := map[string]any{}
		if body := resp.Body(); len(body) > 0 {
			var parsed map[string]any
			if unmarshalErr := sonic.Unmarshal(body, &parsed); unmarshalErr == nil && parsed != nil {
				details = parsed
			}
		}
		return nil, apierr.FromStatus(status, details)
	}

	var result T
	if err := sonic.Unmarshal(resp.Body(), &result); err != nil {
		return nil, apierr.NewValidationError(what, []apierr.Issue{{
			Message:  err.Error(),
			Code:     "malformed_json",
			Received: "unparsable body",
		}})
	}
	if d, ok := any(&result).(defaulter); ok {
		d.ApplyDefaults()
	}
	if err := schema.Validate(&result, what); err != nil {
		return nil, err
	}
	return &result, nil
}
