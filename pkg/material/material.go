package material

import (
	"math"

	"github.com/lumenray/lumen/pkg/core"
)

// Kind tags the material variant. Dispatch is an exhaustive switch rather
// than an interface: materials are evaluated per bounce per sample, so the
// representation stays compact and dispatch stays branch-predictable.
type Kind uint8

const (
	Lambertian Kind = iota
	Metal
	Dielectric
	DiffuseLight
	Volume
)

// String returns the variant name
func (k Kind) String() string {
	switch k {
	case Lambertian:
		return "lambertian"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	case DiffuseLight:
		return "diffuse-light"
	case Volume:
		return "volume"
	default:
		return "unknown"
	}
}

// Material is a compact tagged union over all variants. Only the fields
// relevant to the Kind are meaningful.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian, Metal, Volume
	Fuzz            float64   // Metal: 0 = mirror, 1 = very fuzzy
	RefractiveIndex float64   // Dielectric
	Emission        core.Vec3 // DiffuseLight
	Density         float64   // Volume: mean free path is 1/Density
}

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Vec3) *Material {
	return &Material{Kind: Lambertian, Albedo: albedo}
}

// NewMetal creates a specular material with the given fuzz in [0, 1]
func NewMetal(albedo core.Vec3, fuzz float64) *Material {
	return &Material{Kind: Metal, Albedo: albedo, Fuzz: max(0, min(1, fuzz))}
}

// NewDielectric creates a refractive material
func NewDielectric(refractiveIndex float64) *Material {
	return &Material{Kind: Dielectric, RefractiveIndex: refractiveIndex}
}

// NewDiffuseLight creates an emissive material
func NewDiffuseLight(emission core.Vec3) *Material {
	return &Material{Kind: DiffuseLight, Emission: emission}
}

// NewVolume creates a probabilistic participating medium
func NewVolume(albedo core.Vec3, density float64) *Material {
	return &Material{Kind: Volume, Albedo: albedo, Density: density}
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // BSDF value for the sampled direction
	PDF         float64   // Probability density (0 for specular variants)
}

// IsSpecular returns true for delta scattering with no PDF
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// Scatter samples an outgoing direction at the given surface point. The
// normal must face the incoming ray; frontFace reports which side was hit.
// Returns false when the material absorbs the ray (emissive variants, or a
// fuzzy metal reflection driven below the horizon).
func (m *Material) Scatter(rayIn core.Ray, point, normal core.Vec3, frontFace bool, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case Lambertian:
		direction := core.SampleCosineHemisphere(normal, sampler.Get2D())
		cosTheta := math.Max(0, direction.Normalize().Dot(normal))
		return ScatterResult{
			Scattered:   core.NewRayAt(point, direction, rayIn.Time),
			Attenuation: m.Albedo.Multiply(1.0 / math.Pi),
			PDF:         cosTheta / math.Pi,
		}, true

	case Metal:
		reflected := reflect(rayIn.Direction.Normalize(), normal)
		if m.Fuzz > 0 {
			perturbation := sampleInUnitSphere(sampler).Multiply(m.Fuzz)
			reflected = reflected.Add(perturbation)
		}
		scattered := core.NewRayAt(point, reflected, rayIn.Time)
		// Absorb rays scattered below the surface
		if scattered.Direction.Dot(normal) <= 0 {
			return ScatterResult{}, false
		}
		return ScatterResult{
			Scattered:   scattered,
			Attenuation: m.Albedo,
			PDF:         0,
		}, true

	case Dielectric:
		return m.scatterDielectric(rayIn, point, normal, frontFace, sampler)

	case DiffuseLight:
		// Lights absorb; they only emit
		return ScatterResult{}, false

	case Volume:
		// Isotropic phase function: uniform over the sphere
		direction := core.SampleOnUnitSphere(sampler.Get2D())
		return ScatterResult{
			Scattered:   core.NewRayAt(point, direction, rayIn.Time),
			Attenuation: m.Albedo.Multiply(1.0 / (4.0 * math.Pi)),
			PDF:         1.0 / (4.0 * math.Pi),
		}, true

	default:
		return ScatterResult{}, false
	}
}

func (m *Material) scatterDielectric(rayIn core.Ray, point, normal core.Vec3, frontFace bool, sampler core.Sampler) (ScatterResult, bool) {
	unitDirection := rayIn.Direction.Normalize()

	// Entering the medium on the front face, leaving it on the back face
	refractionRatio := m.RefractiveIndex
	if frontFace {
		refractionRatio = 1.0 / m.RefractiveIndex
	}

	cosTheta := math.Min(-unitDirection.Dot(normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = reflect(unitDirection, normal)
	} else {
		direction = refract(unitDirection, normal, refractionRatio)
	}

	return ScatterResult{
		Scattered:   core.NewRayAt(point, direction, rayIn.Time),
		Attenuation: core.NewVec3(1, 1, 1),
		PDF:         0,
	}, true
}

// Emit returns the emitted radiance. Zero for non-emissive variants.
func (m *Material) Emit() core.Vec3 {
	switch m.Kind {
	case DiffuseLight:
		return m.Emission
	default:
		return core.Vec3{}
	}
}

// IsEmissive reports whether the material emits light
func (m *Material) IsEmissive() bool {
	return m.Kind == DiffuseLight &&
		(m.Emission.X > 0 || m.Emission.Y > 0 || m.Emission.Z > 0)
}

// IsVolume reports whether the material is a participating medium
func (m *Material) IsVolume() bool {
	return m.Kind == Volume
}

// PDF returns the scattering density for the given outgoing direction,
// used to reweight explicit light samples. Specular and emissive variants
// return zero.
func (m *Material) PDF(outgoing, normal core.Vec3) float64 {
	switch m.Kind {
	case Lambertian:
		cosTheta := outgoing.Normalize().Dot(normal)
		if cosTheta <= 0 {
			return 0
		}
		return cosTheta / math.Pi
	case Volume:
		return 1.0 / (4.0 * math.Pi)
	case Metal, Dielectric, DiffuseLight:
		return 0
	default:
		return 0
	}
}

// SampleFreePath samples an exponential free-path length through the medium
// and reports whether the path terminates before exitDistance. Only
// meaningful for Volume materials.
func (m *Material) SampleFreePath(exitDistance float64, u float64) (float64, bool) {
	if m.Kind != Volume || m.Density <= 0 {
		return 0, false
	}
	distance := -math.Log(1.0-u) / m.Density
	if distance < exitDistance {
		return distance, true
	}
	return 0, false
}

// reflect calculates the reflection of v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refract calculates the refraction of uv through a surface using Snell's law
func refract(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// reflectance calculates Fresnel reflectance using Schlick's approximation
func reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// sampleInUnitSphere generates a random point inside a unit sphere
func sampleInUnitSphere(sampler core.Sampler) core.Vec3 {
	for {
		s := sampler.Get2D()
		p := core.NewVec3(2*s.X-1, 2*s.Y-1, 2*sampler.Get1D()-1)
		if p.LengthSquared() <= 1.0 {
			return p
		}
	}
}
