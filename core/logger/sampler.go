package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type ratio struct{ num, den uint64 }

// sampler passes num out of every den calls. A zero ratio passes everything.
type sampler struct {
	ratio atomic.Pointer[ratio]
	calls atomic.Uint64
}

func newSampler(num, den int) *sampler {
	s := &sampler{}
	s.Set(num, den)
	return s
}

func (s *sampler) Set(num, den int) {
	r := &ratio{}
	if num > 0 && den > 0 {
		r.num, r.den = uint64(min(num, den)), uint64(den)
	}
	s.ratio.Store(r)
	s.calls.Store(0)
}

func (s *sampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil || r.den == 0 {
		return true
	}
	return (s.calls.Add(1)-1)%r.den < r.num
}

// parseSampleSpec reads "n/d" or a bare "d" meaning 1/d.
// ok is false when spec is malformed.
func parseSampleSpec(spec string) (num, den int, ok bool) {
	spec = strings.TrimSpace(spec)
	if a, b, found := strings.Cut(spec, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(a))
		d, err2 := strconv.Atoi(strings.TrimSpace(b))
		return n, d, err1 == nil && err2 == nil
	}
	d, err := strconv.Atoi(spec)
	if err != nil || d <= 0 {
		return 0, 0, false
	}
	return 1, d, true
}
