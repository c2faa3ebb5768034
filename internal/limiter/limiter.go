package limiter

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// maxHosts bounds the map; when it is reached the idle limiters are dropped.
const maxHosts = 4096

// HostLimiter rate-limits per hostname: posting hosts on the client side,
// remote addresses on the gateway side.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	if len(hl.m) >= maxHosts {
		for h, lim := range hl.m {
			if lim.Tokens() >= float64(hl.b) {
				delete(hl.m, h)
			}
		}
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

// Allow reports whether host may make a request now.
func (hl *HostLimiter) Allow(host string) bool {
	return hl.limiterFor(host).Allow()
}

// WaitURL blocks until the host of raw may be contacted.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}
