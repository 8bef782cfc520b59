package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratio is an n/d pair; d == 0 lets every event pass.
type ratio struct{ n, d uint64 }

// ratioSampler passes the first n events of every window of d.
type ratioSampler struct {
	cfg  atomic.Pointer[ratio]
	seen atomic.Uint64
}

func newRatioSampler(n, d int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(n, d)
	return s
}

// Set replaces the ratio and restarts the window. Non-positive values turn sampling off.
func (s *ratioSampler) Set(n, d int) {
	r := &ratio{}
	if n > 0 && d > 0 {
		r.n, r.d = uint64(min(n, d)), uint64(d)
	}
	s.cfg.Store(r)
	s.seen.Store(0)
}

func (s *ratioSampler) Allow() bool {
	r := s.cfg.Load()
	if r == nil || r.d == 0 {
		return true
	}
	return (s.seen.Add(1)-1)%r.d < r.n
}

// parseRatioSpec reads "n/d", or a bare "d" meaning 1/d. Anything else yields 0/0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	num, den, hasSlash := strings.Cut(spec, "/")
	if !hasSlash {
		if d, err := strconv.Atoi(spec); err == nil && d > 0 {
			return 1, d
		}
		return 0, 0
	}
	n, errN := strconv.Atoi(strings.TrimSpace(num))
	d, errD := strconv.Atoi(strings.TrimSpace(den))
	if errN != nil || errD != nil {
		return 0, 0
	}
	return n, d
}
