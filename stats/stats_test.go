package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []float64
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]float64{1, 0, 1, 1, 0.5, 0, 1, 1}, 0.6875, 0.45806269},
		{[]float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]float64{1}, 1, 0},
		{[]float64{}, 0, 0},
		{[]float64{0.5, 0.5}, 0.5, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(score)
		}
		is.Equal(s.Iterations(), len(c.scores))
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for i := 0; i < 100; i++ {
		s.Push(float64(i % 2))
	}
	lo, hi := s.Interval(95)
	is.True(lo < 0.5 && hi > 0.5)
	is.True(FuzzyEqual(0.5-lo, hi-0.5))
	is.True(FuzzyEqual(hi-lo, 2*ZVal(95)*s.StandardError()))
}
