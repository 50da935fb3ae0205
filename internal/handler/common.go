package handler

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/middleware"
)

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// CacheInvalidator drops cached room listings after a mutation.  A nil
// receiver or nil Redis client turns every call into a no-op, so
// handlers never need to care whether caching is enabled.
type CacheInvalidator struct {
	RDB    *redis.Client
	Prefix string
}

func (ci *CacheInvalidator) Invalidate(ctx context.Context) {
	if ci == nil || ci.RDB == nil {
		return
	}
	// Stale entries expire on their own TTL; a failed purge is ignored.
	_ = middleware.InvalidateCache(ctx, ci.RDB, ci.Prefix)
}
