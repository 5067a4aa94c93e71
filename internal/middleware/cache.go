package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// cachedResponse is the stored form of one cacheable reply.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// captureWriter duplicates the response body while forwarding it to
// the client so successful replies can be stored after the handler
// runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// CacheGET caches successful GET responses in Redis for ttl.  The
// floor listing changes rarely and is read on every booking form
// load, so a short TTL takes that traffic off the store.  With Redis
// unavailable the middleware is a pass-through.  Availability lookups
// must NOT run through this: a stale availability answer would widen
// the race window the booking commit exists to close.
func CacheGET(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
			key := fmt.Sprintf("cache:%x", sum)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					return c.JSONBlob(cached.Status, cached.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK {
				raw, err := json.Marshal(cachedResponse{Status: cw.status, Body: cw.buf.Bytes()})
				if err == nil {
					_ = rdb.Set(ctx, key, raw, ttl).Err()
				}
			}
			return nil
		}
	}
}
