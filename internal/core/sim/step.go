package sim

// Initialize builds the population listed in cfg, in order, each agent at its
// role's spawn point.
func Initialize(cfg Config) ([]*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	agents := make([]*Agent, 0, len(cfg.Population))
	for _, role := range cfg.Population {
		agents = append(agents, NewAgent(role, cfg.Stats(role)))
	}
	return agents, nil
}

// Tick advances every agent by one step. All agents sense against the same
// snapshot taken before anyone moves, so the order of agents does not matter.
func Tick(agents []*Agent, env Environment) {
	step(agents, TakeSnapshot(agents), env, nil)
}

// stepResult is what happened to one agent during a step.
type stepResult struct {
	sensed bool
	wall   Wall
}

func step(agents []*Agent, snapshot Snapshot, env Environment, visit func(a *Agent, r stepResult)) {
	for _, a := range agents {
		_, sensed := a.SenseTargets(snapshot)
		wall := a.Steer(env)
		if visit != nil {
			visit(a, stepResult{sensed: sensed, wall: wall})
		}
		a.Integrate()
	}
}
