package scene

import (
	"fmt"
	"sort"

	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
	"github.com/lumenray/lumen/pkg/integrator"
	"github.com/lumenray/lumen/pkg/material"
	"github.com/lumenray/lumen/pkg/renderer"
)

var builtin = map[string]func() *Scene{
	"default": Default,
	"cornell": Cornell,
}

// Names lists the built-in scenes in sorted order
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns the named built-in scene
func ByName(name string) (*Scene, error) {
	build, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q, available: %v", name, Names())
	}
	return build(), nil
}

// Default is an open-sky arrangement of spheres exercising every surface
// material plus a moving sphere for motion blur
func Default() *Scene {
	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	matte := material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))
	glass := material.NewDielectric(1.5)
	steel := material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.05)
	lamp := material.NewDiffuseLight(core.NewVec3(8, 8, 8))

	entities := []*geometry.Entity{
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000), ground),
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1), matte),
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 1, 0), 1), glass),
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(4, 1, 0), 1), steel),
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 6, 3), 1.5), lamp),
		geometry.NewTransformedEntity(
			geometry.NewSphere(core.NewVec3(-1.5, 0.4, 2.5), 0.4),
			geometry.MovingTransform(core.Vec3{}, core.NewVec3(0, 0.3, 0), 0, 1),
			matte),
	}

	return &Scene{
		Name: "default",
		Camera: renderer.CameraConfig{
			LookFrom: core.NewVec3(10, 2.2, 4),
			LookAt:   core.NewVec3(0, 1, 0),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     28,
		},
		Entities:     entities,
		Environment:  integrator.NewGradientSky(core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1, 1, 1)),
		ShutterOpen:  0,
		ShutterClose: 1,
	}
}

// Cornell is the classic enclosed box with an area light, a tall metal box
// and a participating-media block
func Cornell() *Scene {
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	steel := material.NewMetal(core.NewVec3(0.8, 0.85, 0.88), 0)
	lamp := material.NewDiffuseLight(core.NewVec3(15, 15, 15))
	smoke := material.NewVolume(core.NewVec3(0.8, 0.8, 0.8), 0.01)

	entities := []*geometry.Entity{
		// Walls; normals face into the box
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555), core.NewVec3(0, 555, 0)), green),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(0, 0, 0), core.NewVec3(0, 555, 0), core.NewVec3(0, 0, 555)), red),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 555), core.NewVec3(555, 0, 0)), white),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(0, 555, 0), core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555)), white),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(0, 0, 555), core.NewVec3(555, 0, 0), core.NewVec3(0, 555, 0)), white),
		// Ceiling light
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(213, 554, 227), core.NewVec3(130, 0, 0), core.NewVec3(0, 0, 105)), lamp),
		// Tall reflective box
		geometry.NewTransformedEntity(
			geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(165, 330, 165)),
			geometry.StaticTransform(core.NewVec3(265, 0, 295)),
			steel),
		// Smoke block
		geometry.NewTransformedEntity(
			geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(165, 165, 165)),
			geometry.StaticTransform(core.NewVec3(130, 0, 65)),
			smoke),
	}

	return &Scene{
		Name: "cornell",
		Camera: renderer.CameraConfig{
			LookFrom: core.NewVec3(278, 278, -800),
			LookAt:   core.NewVec3(278, 278, 0),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     40,
		},
		Entities: entities,
	}
}
