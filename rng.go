package epicore

import (
	"math"
	"math/rand"
)

// DistParams holds the default parameters for each distribution a
// Model's RNG stream can draw from. Any method below accepts an
// optional override following the "temporary-parameter swap" pattern
// described by the spec: pass nothing to use the configured default,
// or pass the distribution's full parameter list (two values for
// Uniform/Normal/Gamma/LogNormal, one for Exponential) to use it for
// that single draw only.
type DistParams struct {
	UniformMin, UniformMax float64
	NormalMean, NormalSD   float64
	GammaShape, GammaScale float64
	LogNormalMu, LogNormalSigma float64
	ExponentialRate        float64
}

// DefaultDistParams returns the conventional defaults: Uniform(0,1),
// Normal(0,1), Gamma(1,1), LogNormal(0,1), Exponential(1).
func DefaultDistParams() DistParams {
	return DistParams{
		UniformMin: 0, UniformMax: 1,
		NormalMean: 0, NormalSD: 1,
		GammaShape: 1, GammaScale: 1,
		LogNormalMu: 0, LogNormalSigma: 1,
		ExponentialRate: 1,
	}
}

// RNGStream is the single shared random engine used by a Model. Every
// distribution draw goes through this one engine, matching the spec's
// "single std::mt19937-equivalent engine per Model" discipline.
type RNGStream struct {
	engine *rand.Rand
	Params DistParams
}

// NewRNGStream creates a stream seeded deterministically with seed.
// Any value, negative ones included, yields the same sequence every
// time it is used.
func NewRNGStream(seed int64) *RNGStream {
	src := rand.NewSource(seed)
	return &RNGStream{engine: rand.New(src), Params: DefaultDistParams()}
}

// Seed reseeds the stream in place, used by Model.Reset and by the
// multi-replicate driver when handing a fresh per-replicate seed to a
// worker's cloned Model.
func (s *RNGStream) Seed(seed int64) {
	s.engine.Seed(seed)
}

// Clone returns an independent stream with the same parameters, whose
// engine is seeded from one draw of s (advancing s by that draw) —
// used when deep-cloning a Model for a multi-replicate worker. The
// clone does not reproduce s's sequence.
func (s *RNGStream) Clone() *RNGStream {
	c := &RNGStream{engine: rand.New(rand.NewSource(0)), Params: s.Params}
	// math/rand does not expose engine state for copying, so the clone
	// gets a fresh seed drawn from s instead; RunMultiple reseeds it
	// with the per-replicate seed before every replicate anyway.
	c.engine.Seed(s.engine.Int63())
	return c
}

// Uniform draws Uniform(min,max); with no override uses s.Params.
func (s *RNGStream) Uniform(override ...float64) float64 {
	min, max := s.Params.UniformMin, s.Params.UniformMax
	if len(override) == 2 {
		min, max = override[0], override[1]
	}
	return min + s.engine.Float64()*(max-min)
}

// Normal draws Normal(mean,sd).
func (s *RNGStream) Normal(override ...float64) float64 {
	mean, sd := s.Params.NormalMean, s.Params.NormalSD
	if len(override) == 2 {
		mean, sd = override[0], override[1]
	}
	return mean + s.engine.NormFloat64()*sd
}

// Exponential draws Exponential(rate).
func (s *RNGStream) Exponential(override ...float64) float64 {
	rate := s.Params.ExponentialRate
	if len(override) == 1 {
		rate = override[0]
	}
	return s.engine.ExpFloat64() / rate
}

// Gamma draws Gamma(shape,scale) by the Marsaglia-Tsang method, boosted
// for shape < 1 per Marsaglia & Tsang (2000) "A Simple Method for
// Generating Gamma Variables". Every draw comes from s.engine, not
// math/rand's package-level default source, so a Model's seed governs
// it.
func (s *RNGStream) Gamma(override ...float64) float64 {
	shape, scale := s.Params.GammaShape, s.Params.GammaScale
	if len(override) == 2 {
		shape, scale = override[0], override[1]
	}
	if shape < 1 {
		// Boost: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
		u := s.engine.Float64()
		return s.gammaAtLeastOne(shape+1, scale) * math.Pow(u, 1/shape)
	}
	return s.gammaAtLeastOne(shape, scale)
}

func (s *RNGStream) gammaAtLeastOne(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.engine.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.engine.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// LogNormal draws LogNormal(mu,sigma) as exp(mu + sigma*Z) for a
// standard-normal Z drawn from s.engine.
func (s *RNGStream) LogNormal(override ...float64) float64 {
	mu, sigma := s.Params.LogNormalMu, s.Params.LogNormalSigma
	if len(override) == 2 {
		mu, sigma = override[0], override[1]
	}
	return math.Exp(mu + sigma*s.engine.NormFloat64())
}

// Binomial draws Binomial(n,p) as the sum of n independent Bernoulli
// trials against s.engine.
func (s *RNGStream) Binomial(n int, p float64) int {
	count := 0
	for i := 0; i < n; i++ {
		if s.engine.Float64() < p {
			count++
		}
	}
	return count
}

// Bernoulli is the workhorse draw for per-contact transmission,
// recovery, and death checks.
func (s *RNGStream) Bernoulli(p float64) bool {
	return s.engine.Float64() < p
}

// Poisson draws Poisson(lambda) via Knuth's algorithm, multiplying
// successive s.engine.Float64() draws until the running product drops
// below exp(-lambda).
func (s *RNGStream) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= s.engine.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// Intn draws a uniform integer in [0,n).
func (s *RNGStream) Intn(n int) int {
	return s.engine.Intn(n)
}

// Int63 draws a non-negative pseudo-random 63-bit integer, used by
// RunMultiple to pre-generate per-replicate seeds.
func (s *RNGStream) Int63() int64 {
	return s.engine.Int63()
}

// Perm returns a random permutation of [0,n), used to sample agents
// without replacement for AddVirusN.
func (s *RNGStream) Perm(n int) []int {
	return s.engine.Perm(n)
}
