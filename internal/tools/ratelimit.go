package tools

import (
	"sync"

	"golang.org/x/time/rate"
)

// ToolRateLimiter rate-limits calls to the search_* tools, one
// limiter per tool name rather than per visitor IP, since the limited
// resource here is an outbound call to an external search collaborator
// shared across every session on the process.
type ToolRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewToolRateLimiter returns a limiter allowing rps requests per second
// per tool, with the given burst.
func NewToolRateLimiter(rps float64, burst int) *ToolRateLimiter {
	return &ToolRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (rl *ToolRateLimiter) limiterFor(toolName string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[toolName]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(rl.rps), rl.burst)
		rl.limiters[toolName] = limiter
	}
	return limiter
}

// Allow reports whether a call to toolName is permitted right now. It
// is a no-op (always allows) for tools outside the search_* catalog.
func (rl *ToolRateLimiter) Allow(toolName string) bool {
	if !IsSearchTool(toolName) {
		return true
	}
	return rl.limiterFor(toolName).Allow()
}
