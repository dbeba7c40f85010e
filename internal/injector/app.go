package injector

import (
	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
	"github.com/zeusync/forestsim/internal/server"
)

// App is the object graph a forestsim process runs.
type App struct {
	Logger *log.Logger
	World  *sim.World
	Server *server.Server
}
