package room

// admissionGuard bounds concurrent connections before authentication.
// Unauthenticated connections count against both ceilings, so connection
// floods are contained regardless of credential validity.
type admissionGuard struct {
	maxTotal     int
	maxPerOrigin int
	total        int
	perOrigin    map[string]int
}

func newAdmissionGuard(maxTotal, maxPerOrigin int) *admissionGuard {
	return &admissionGuard{
		maxTotal:     maxTotal,
		maxPerOrigin: maxPerOrigin,
		perOrigin:    make(map[string]int),
	}
}

func (g *admissionGuard) admit(origin string) error {
	if g.total >= g.maxTotal {
		return ErrRoomFull
	}
	if g.perOrigin[origin] >= g.maxPerOrigin {
		return ErrOriginLimited
	}
	g.total++
	g.perOrigin[origin]++
	return nil
}

func (g *admissionGuard) release(origin string) {
	if g.total > 0 {
		g.total--
	}
	if n, ok := g.perOrigin[origin]; ok {
		if n <= 1 {
			// Drop the entry so transient origins cannot grow the map forever.
			delete(g.perOrigin, origin)
		} else {
			g.perOrigin[origin] = n - 1
		}
	}
}
