package sandbox

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Action is a named panel command a front-end can bind to a key or button.
type Action struct {
	Name string
	Key  string
	Run  func() error
}

// DebugPanel spawns randomly sized objects above the floor. It does not
// validate its draws; the factory rejects bad ones.
type DebugPanel struct {
	sim *Simulation
	rng *rand.Rand
}

func NewDebugPanel(sim *Simulation, seed int64) *DebugPanel {
	return &DebugPanel{sim: sim, rng: rand.New(rand.NewSource(seed))}
}

func (p *DebugPanel) spawnPosition() mgl64.Vec3 {
	spread := p.sim.cfg.Spawn.Spread
	return mgl64.Vec3{
		(p.rng.Float64() - 0.5) * spread,
		p.sim.cfg.Spawn.Height,
		(p.rng.Float64() - 0.5) * spread,
	}
}

func (p *DebugPanel) CreateSphere() (ObjectPair, error) {
	radius := p.rng.Float64() * p.sim.cfg.Spawn.MaxSphereRadius
	pair, err := p.sim.factory.CreateSphere(radius, p.spawnPosition())
	if err != nil {
		p.sim.logger.Warn("sphere rejected", "radius", radius, "err", err)
	}
	return pair, err
}

func (p *DebugPanel) AddBox() (ObjectPair, error) {
	edge := p.sim.cfg.Spawn.MaxBoxEdge
	w, h, d := p.rng.Float64()*edge, p.rng.Float64()*edge, p.rng.Float64()*edge
	pair, err := p.sim.factory.CreateBox(w, h, d, p.spawnPosition())
	if err != nil {
		p.sim.logger.Warn("box rejected", "size", []float64{w, h, d}, "err", err)
	}
	return pair, err
}

func (p *DebugPanel) Actions() []Action {
	return []Action{
		{Name: "createSphere", Key: "s", Run: func() error { _, err := p.CreateSphere(); return err }},
		{Name: "createBox", Key: "b", Run: func() error { _, err := p.AddBox(); return err }},
	}
}
