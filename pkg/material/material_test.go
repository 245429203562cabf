package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lumenray/lumen/pkg/core"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Lambertian, "lambertian"},
		{Metal, "metal"},
		{Dielectric, "dielectric"},
		{DiffuseLight, "diffuse-light"},
		{Volume, "volume"},
		{Kind(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestLambertian_Scatter(t *testing.T) {
	mat := NewLambertian(core.NewVec3(0.8, 0.4, 0.2))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(5)))
	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	for i := 0; i < 100; i++ {
		result, ok := mat.Scatter(ray, core.Vec3{}, normal, true, sampler)
		if !ok {
			t.Fatal("Lambertian should always scatter")
		}
		if result.IsSpecular() {
			t.Fatal("Lambertian scattering is not specular")
		}

		dir := result.Scattered.Direction.Normalize()
		cosTheta := dir.Dot(normal)
		if cosTheta < 0 {
			t.Fatalf("Scattered below the surface: %v", dir)
		}
		if math.Abs(result.PDF-cosTheta/math.Pi) > 1e-9 {
			t.Fatalf("Expected pdf cos/pi = %v, got %v", cosTheta/math.Pi, result.PDF)
		}
		expected := mat.Albedo.Multiply(1.0 / math.Pi)
		if result.Attenuation != expected {
			t.Fatalf("Expected attenuation %v, got %v", expected, result.Attenuation)
		}
	}
}

func TestMetal_Scatter(t *testing.T) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(9)))
	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0).Normalize())

	// A perfect mirror reflects about the normal
	mirror := NewMetal(core.NewVec3(0.9, 0.9, 0.9), 0)
	result, ok := mirror.Scatter(ray, core.Vec3{}, normal, true, sampler)
	if !ok {
		t.Fatal("Mirror reflection off the top face should scatter")
	}
	if !result.IsSpecular() {
		t.Error("Metal scattering must be specular")
	}
	expected := core.NewVec3(1, 1, 0).Normalize()
	if result.Scattered.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected reflection %v, got %v", expected, result.Scattered.Direction)
	}

	// Fuzzy reflections stay above the surface or are absorbed
	fuzzy := NewMetal(core.NewVec3(0.9, 0.9, 0.9), 1)
	for i := 0; i < 100; i++ {
		result, ok := fuzzy.Scatter(ray, core.Vec3{}, normal, true, sampler)
		if ok && result.Scattered.Direction.Dot(normal) <= 0 {
			t.Fatal("Scattered ray below the horizon was not absorbed")
		}
	}
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	mat := NewDielectric(1.5)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(13)))

	// Shallow exit angle beyond the critical angle must reflect
	normal := core.NewVec3(0, 1, 0) // Faces the ray (back-face hit, exiting)
	direction := core.NewVec3(1, -0.1, 0).Normalize()
	ray := core.NewRay(core.Vec3{}, direction)

	result, ok := mat.Scatter(ray, core.Vec3{}, normal, false, sampler)
	if !ok {
		t.Fatal("Dielectric should always scatter")
	}
	reflected := direction.Subtract(normal.Multiply(2 * direction.Dot(normal)))
	if result.Scattered.Direction.Subtract(reflected).Length() > 1e-9 {
		t.Errorf("Expected total internal reflection %v, got %v",
			reflected, result.Scattered.Direction)
	}
}

func TestDielectric_RefractsStraightThrough(t *testing.T) {
	mat := NewDielectric(1.5)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(17)))

	// Normal incidence refracts without bending regardless of the Fresnel
	// coin flip direction
	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	for i := 0; i < 50; i++ {
		result, ok := mat.Scatter(ray, core.Vec3{}, normal, true, sampler)
		if !ok {
			t.Fatal("Dielectric should always scatter")
		}
		if math.Abs(math.Abs(result.Scattered.Direction.Normalize().Y)-1) > 1e-9 {
			t.Fatalf("Normal incidence should stay on the normal axis, got %v",
				result.Scattered.Direction)
		}
	}
}

func TestDiffuseLight_AbsorbsAndEmits(t *testing.T) {
	mat := NewDiffuseLight(core.NewVec3(4, 3, 2))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(21)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0))

	if _, ok := mat.Scatter(ray, core.Vec3{}, core.NewVec3(0, 1, 0), true, sampler); ok {
		t.Error("Lights must absorb incoming rays")
	}
	if mat.Emit() != core.NewVec3(4, 3, 2) {
		t.Errorf("Expected emission (4, 3, 2), got %v", mat.Emit())
	}
	if !mat.IsEmissive() {
		t.Error("Expected IsEmissive")
	}
	if NewDiffuseLight(core.Vec3{}).IsEmissive() {
		t.Error("Zero emission should not count as emissive")
	}
	if NewLambertian(core.NewVec3(1, 1, 1)).Emit() != (core.Vec3{}) {
		t.Error("Non-lights must emit zero")
	}
}

func TestVolume_Scatter(t *testing.T) {
	mat := NewVolume(core.NewVec3(0.7, 0.7, 0.7), 0.5)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(23)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	result, ok := mat.Scatter(ray, core.Vec3{}, core.NewVec3(1, 0, 0), true, sampler)
	if !ok {
		t.Fatal("Volume should always scatter")
	}
	invSphere := 1.0 / (4.0 * math.Pi)
	if math.Abs(result.PDF-invSphere) > 1e-12 {
		t.Errorf("Expected isotropic pdf %v, got %v", invSphere, result.PDF)
	}
	expected := mat.Albedo.Multiply(invSphere)
	if result.Attenuation != expected {
		t.Errorf("Expected attenuation %v, got %v", expected, result.Attenuation)
	}
	if mat.PDF(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)) != invSphere {
		t.Error("Volume direction pdf must be uniform")
	}
}

func TestSampleFreePath(t *testing.T) {
	mat := NewVolume(core.NewVec3(1, 1, 1), 2)

	// u = 0 scatters immediately, u close to 1 escapes a short segment
	if dist, ok := mat.SampleFreePath(10, 0); !ok || dist != 0 {
		t.Errorf("Expected immediate scatter, got dist=%v ok=%v", dist, ok)
	}
	if _, ok := mat.SampleFreePath(0.001, 0.999999); ok {
		t.Error("Expected escape through a thin segment")
	}

	// Exact inversion of the exponential CDF at the median
	dist, ok := mat.SampleFreePath(100, 0.5)
	if !ok {
		t.Fatal("Expected scatter well inside the segment")
	}
	expected := -math.Log(0.5) / 2
	if math.Abs(dist-expected) > 1e-12 {
		t.Errorf("Expected median free path %v, got %v", expected, dist)
	}

	// Non-volumes never sample a free path
	if _, ok := NewLambertian(core.NewVec3(1, 1, 1)).SampleFreePath(10, 0.5); ok {
		t.Error("Non-volume materials must not scatter in a medium")
	}
}

func TestSampleFreePath_MeanMatchesDensity(t *testing.T) {
	const density = 4.0
	mat := NewVolume(core.NewVec3(1, 1, 1), density)
	random := rand.New(rand.NewSource(31))

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		dist, ok := mat.SampleFreePath(math.Inf(1), random.Float64())
		if !ok {
			t.Fatal("Unbounded segment must always scatter")
		}
		sum += dist
	}
	mean := sum / n
	// Mean free path is 1/density; loose statistical tolerance
	if math.Abs(mean-1/density) > 0.01 {
		t.Errorf("Expected mean free path near %v, got %v", 1/density, mean)
	}
}
