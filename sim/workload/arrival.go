package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// ArrivalSampler draws the gap between consecutive nurse arrivals.
type ArrivalSampler interface {
	// SampleGap returns a strictly positive inter-arrival time.
	SampleGap(rng *rand.Rand) float64
}

// PoissonSampler draws exponential gaps, i.e. a Poisson arrival process.
type PoissonSampler struct {
	rate float64
}

func (s *PoissonSampler) SampleGap(rng *rand.Rand) float64 {
	return positiveGap(rng.ExpFloat64() / s.rate)
}

// GammaSampler draws Gamma gaps. Shape 1/CV² keeps the mean at 1/rate; CV > 1
// clusters arrivals into bursts.
type GammaSampler struct {
	shape float64
	rate  float64 // Gamma rate parameter, not the arrival rate
}

func (s *GammaSampler) SampleGap(rng *rand.Rand) float64 {
	d := distuv.Gamma{Alpha: s.shape, Beta: s.rate, Src: source{rng}}
	return positiveGap(d.Rand())
}

// WeibullSampler draws Weibull gaps with shape k and scale lambda.
type WeibullSampler struct {
	k      float64
	lambda float64
}

func (s *WeibullSampler) SampleGap(rng *rand.Rand) float64 {
	d := distuv.Weibull{K: s.k, Lambda: s.lambda, Src: source{rng}}
	return positiveGap(d.Rand())
}

// source lets gonum distributions draw from a per-subsystem *rand.Rand.
type source struct {
	rng *rand.Rand
}

func (s source) Uint64() uint64 { return s.rng.Uint64() }

func positiveGap(gap float64) float64 {
	if !(gap > 0) {
		return math.SmallestNonzeroFloat64
	}
	return gap
}

// NewArrivalSampler returns a sampler whose gaps average 1/rate. spec.CV
// applies to gamma and weibull; an empty process means poisson.
func NewArrivalSampler(spec ArrivalSpec, rate float64) ArrivalSampler {
	cv := 1.0
	if spec.CV != nil && *spec.CV > 0 {
		cv = *spec.CV
	}
	switch spec.Process {
	case ProcessGamma:
		shape := 1 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (cv=%.1f) is degenerate; using poisson arrivals", shape, cv)
			return &PoissonSampler{rate: rate}
		}
		return &GammaSampler{shape: shape, rate: shape * rate}
	case ProcessWeibull:
		k := weibullShape(cv)
		return &WeibullSampler{k: k, lambda: 1 / (rate * math.Gamma(1+1/k))}
	default:
		return &PoissonSampler{rate: rate}
	}
}

// weibullShape solves CV(k)² = Γ(1+2/k)/Γ(1+1/k)² − 1 for k by bisection on
// [0.1, 100]. CV(k) is decreasing in k.
func weibullShape(cv float64) float64 {
	lo, hi := 0.1, 100.0
	for range 100 {
		mid := (lo + hi) / 2
		got := weibullCV(mid)
		switch {
		case math.Abs(got-cv) < 1e-3:
			return mid
		case got > cv:
			lo = mid
		default:
			hi = mid
		}
	}
	k := (lo + hi) / 2
	logrus.Warnf("Weibull shape for cv=%.3f did not converge; using k=%.3f", cv, k)
	return k
}

func weibullCV(k float64) float64 {
	g1 := math.Gamma(1 + 1/k)
	return math.Sqrt(math.Gamma(1+2/k)/(g1*g1) - 1)
}
