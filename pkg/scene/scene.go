// Package scene defines authored scene descriptions and the built-in demo
// scenes, and compiles them into traceable worlds.
package scene

import (
	"fmt"

	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
	"github.com/lumenray/lumen/pkg/integrator"
	"github.com/lumenray/lumen/pkg/renderer"
)

// Scene is an authored scene: entities, a camera pose and an environment.
// Build compiles it into an immutable world snapshot.
type Scene struct {
	Name        string
	Camera      renderer.CameraConfig
	Entities    []*geometry.Entity
	Environment integrator.Environment

	// Shutter interval for motion blur; equal values disable it
	ShutterOpen  float64
	ShutterClose float64
}

// Validate rejects scenes that would fail mid-trace. Transform time ranges
// are checked here so an empty range is a hard authoring error rather than
// a runtime surprise.
func (s *Scene) Validate() error {
	if len(s.Entities) == 0 {
		return fmt.Errorf("scene %q has no entities", s.Name)
	}
	for i, e := range s.Entities {
		if e.Mat == nil {
			return fmt.Errorf("scene %q: entity %d has no material", s.Name, i)
		}
		if err := e.Transform.Validate(); err != nil {
			return fmt.Errorf("scene %q: entity %d: %w", s.Name, i, err)
		}
	}
	if s.ShutterClose < s.ShutterOpen {
		return fmt.Errorf("scene %q: shutter closes at %g before opening at %g",
			s.Name, s.ShutterClose, s.ShutterOpen)
	}
	return nil
}

// Build validates the scene and compiles its acceleration structure
func (s *Scene) Build() (*integrator.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	env := s.Environment
	if env == nil {
		env = integrator.NewGradientSky(core.Vec3{}, core.Vec3{})
	}
	return integrator.NewWorld(s.Entities, env, geometry.DefaultBuildConfig()), nil
}
