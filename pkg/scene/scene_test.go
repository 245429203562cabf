package scene

import (
	"errors"
	"testing"

	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
	"github.com/lumenray/lumen/pkg/material"
)

func TestBuiltinScenesBuild(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			sc, err := ByName(name)
			if err != nil {
				t.Fatalf("ByName(%q) failed: %v", name, err)
			}
			if sc.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, sc.Name)
			}
			world, err := sc.Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			stats := world.BVH.Stats()
			if stats.Entities != len(sc.Entities) {
				t.Errorf("Expected %d entities in BVH, got %d", len(sc.Entities), stats.Entities)
			}
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("nope"); err == nil {
		t.Error("Expected an error for an unknown scene name")
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Expected sorted unique names, got %v", names)
		}
	}
}

func TestValidate(t *testing.T) {
	matte := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sphere := func() *geometry.Entity {
		return geometry.NewEntity(geometry.NewSphere(core.Vec3{}, 1), matte)
	}

	tests := []struct {
		name    string
		scene   *Scene
		wantErr bool
	}{
		{
			name:    "Empty scene",
			scene:   &Scene{Name: "empty"},
			wantErr: true,
		},
		{
			name: "Missing material",
			scene: &Scene{
				Name:     "bad",
				Entities: []*geometry.Entity{geometry.NewEntity(geometry.NewSphere(core.Vec3{}, 1), nil)},
			},
			wantErr: true,
		},
		{
			name: "Shutter closes before opening",
			scene: &Scene{
				Name:         "bad",
				Entities:     []*geometry.Entity{sphere()},
				ShutterOpen:  1,
				ShutterClose: 0,
			},
			wantErr: true,
		},
		{
			name: "Valid static scene",
			scene: &Scene{
				Name:     "ok",
				Entities: []*geometry.Entity{sphere()},
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_EmptyTimeRange(t *testing.T) {
	matte := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sc := &Scene{
		Name: "bad",
		Entities: []*geometry.Entity{
			geometry.NewTransformedEntity(
				geometry.NewSphere(core.Vec3{}, 1),
				geometry.MovingTransform(core.Vec3{}, core.NewVec3(0, 1, 0), 2, 2),
				matte),
		},
	}
	if err := sc.Validate(); !errors.Is(err, geometry.ErrEmptyTimeRange) {
		t.Errorf("Expected ErrEmptyTimeRange, got %v", err)
	}
}

func TestBuild_DefaultsToBlackSky(t *testing.T) {
	sc, err := ByName("cornell")
	if err != nil {
		t.Fatal(err)
	}
	world, err := sc.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	sky := world.Env.Sample(core.NewVec3(0, 1, 0))
	if sky.Length() != 0 {
		t.Errorf("Expected black environment for an enclosed scene, got %v", sky)
	}
}
