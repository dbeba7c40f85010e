//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/forestsim/internal/core/events/bus"
	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
	"github.com/zeusync/forestsim/internal/server"
)

func InitializeApp(simConfig sim.Config, serverConfig server.Config, level log.Level, logOptions log.Options) (*App, error) {
	wire.Build(
		log.NewWithOptions,
		wire.Bind(new(log.Log), new(*log.Logger)),
		bus.New,
		sim.NewWorld,
		wire.Bind(new(server.Source), new(*sim.World)),
		server.NewServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
