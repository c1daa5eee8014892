package config

import (
	"maps"
	"slices"
)

func preset(name string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Preset = name
	edit(c)
	return c
}

var Presets = map[string]*Config{
	"default": preset("default", func(c *Config) {}),
	"bouncy": preset("bouncy", func(c *Config) {
		c.Material = MaterialConfig{Friction: 0.1, Restitution: 0.9}
		c.Spawn.LinearDamping = 0.05
	}),
	"sticky": preset("sticky", func(c *Config) {
		c.Material = MaterialConfig{Friction: 0.9, Restitution: 0.1}
		c.Spawn.LinearDamping = 0.5
	}),
	"moon": preset("moon", func(c *Config) {
		c.World.Gravity = [3]float64{0, -1.62, 0}
		c.Spawn.Height = 5
		c.Spawn.Initial[0].Position = [3]float64{0, 5, 0}
	}),
	"crowded": preset("crowded", func(c *Config) {
		c.World.Workers = 4
		c.Floor.Width, c.Floor.Length = 20, 20
		c.Spawn.Spread = 8
		c.Spawn.Initial = nil
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				x, z := float64(i)*1.5-2.25, float64(j)*1.5-2.25
				spec := ShapeSpec{Shape: "sphere", Radius: 0.4, Position: [3]float64{x, 2 + float64(i+j)*0.5, z}}
				if (i+j)%2 == 1 {
					spec = ShapeSpec{Shape: "box", Size: [3]float64{0.7, 0.7, 0.7}, Position: spec.Position}
				}
				c.Spawn.Initial = append(c.Spawn.Initial, spec)
			}
		}
	}),
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
