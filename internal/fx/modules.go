package fx

import (
	"go.uber.org/fx"

	"chess-directory/internal/api"
	"chess-directory/internal/cache"
	"chess-directory/internal/config"
	"chess-directory/internal/constants"
	"chess-directory/internal/logger"
	"chess-directory/internal/server"
	"chess-directory/internal/service"
)

func ProvideStore() *cache.Store {
	return cache.NewStore(constants.CacheIdleEviction, constants.CacheSweepInterval)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideStore),
	// api client
	fx.Provide(api.NewChessClient),
	// svc
	fx.Provide(service.NewPlayerService),
	// server
	fx.Provide(server.NewDirectoryServer),
)
