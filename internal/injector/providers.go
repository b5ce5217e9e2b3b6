package injector

import (
	"github.com/google/wire"

	"defense-planner/internal/board"
	"defense-planner/internal/config"
	"defense-planner/internal/eventbus"
	"defense-planner/internal/formation"
	"defense-planner/internal/interpolation"
	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
	"defense-planner/internal/storage"
	"defense-planner/internal/team"
	"defense-planner/services/planner"
)

// App is everything cmd/planner needs to run.
type App struct {
	Service *planner.Service
	Log     logger.Log
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBackend,
	ProvideRepositories,
	ProvideFormationStore,
	ProvideTeamStore,
	ProvideEngine,
	ProvideBoard,
	ProvidePublisher,
	ProvideServiceConfig,
	planner.NewService,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (logger.Log, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	l, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func ProvideBackend(cfg *config.Config) (storage.Backend, error) {
	return storage.New(cfg.Storage.Config)
}

func ProvideRepositories(cfg *config.Config, backend storage.Backend, log logger.Log) planner.Repositories {
	return planner.Repositories{
		Formations: storage.NewCollection[formation.Formation](backend, cfg.Storage.FormationsKey, schema.MustBuiltin("formation"), log),
		Teams:      storage.NewCollection[team.Team](backend, cfg.Storage.TeamsKey, schema.MustBuiltin("team"), log),
	}
}

func ProvideFormationStore(cfg *config.Config, repos planner.Repositories) *formation.Store {
	return formation.NewStore(repos.Formations, formation.Options{UniqueNames: cfg.Formations.UniqueNames})
}

func ProvideTeamStore(repos planner.Repositories) *team.Store {
	return team.NewStore(repos.Teams)
}

func ProvideEngine(cfg *config.Config) *interpolation.Engine {
	return interpolation.NewEngine(cfg.Mode(), cfg.Interpolation.NearestCount)
}

func ProvideBoard(cfg *config.Config, store *formation.Store, engine *interpolation.Engine) (*board.Board, error) {
	presets, err := cfg.SectorPresets()
	if err != nil {
		return nil, err
	}
	s := board.Settings{
		Court:        cfg.CourtModel(),
		BallRadius:   cfg.Ball.Radius,
		PlayerRadius: cfg.Players.Radius,
		SnapRadius:   cfg.SnapRadius,
		Presets:      presets,
		Shadow:       cfg.ShadowParams(),

		OutlineSegments: cfg.Render.OutlineSegments,
	}
	return board.New(s, store, engine, cfg.BallStart(), cfg.PlayerStarts(), cfg.PlayerNames()), nil
}

func ProvidePublisher(cfg *config.Config, log logger.Log) eventbus.Publisher {
	return eventbus.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
}

func ProvideServiceConfig(cfg *config.Config) planner.Config {
	return planner.Config{HTTPAddr: cfg.HTTPAddr, MeshSegments: cfg.Render.MeshSegments}
}
