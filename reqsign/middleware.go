package reqsign

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler, composable with any router that chains standard
// middleware.
type MiddlewareFunc func(http.Handler) http.Handler

type identityKey struct{}

// IdentityFromContext returns the authenticated identity stored in the
// context by Middleware. Returns nil if the request did not pass through
// the middleware.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return id
	}

	return nil
}

// MiddlewareConfig configures the server-side verification middleware.
type MiddlewareConfig struct {
	// Verify configures how requests are verified.
	Verify VerifyConfig

	// MaxBodyBytes caps how much of the request body is read for
	// verification. Zero means no limit.
	MaxBodyBytes int64

	// Logger, when non-nil, receives one entry per rejection with the
	// internal reason. Key availability failures log at Error level
	// (server fault); everything else at Warn.
	Logger logrus.FieldLogger

	// OnError is called when verification fails. When nil, a plain 401
	// with the body "authentication failed" is sent. Custom handlers
	// must not echo the error back: the wire response stays generic no
	// matter why verification failed.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware returns a MiddlewareFunc that verifies the origin signature
// on every incoming request. Accepted requests proceed to the next
// handler with the identity in the request context and the body restored
// for downstream reads. Rejected requests are answered with a generic
// 401 that does not reveal which check failed.
//
// It returns ErrNoResolver if Verify.Resolver is nil.
func Middleware(cfg MiddlewareConfig) (MiddlewareFunc, error) {
	if cfg.Verify.Resolver == nil {
		return nil, ErrNoResolver
	}

	onError := cfg.OnError
	if onError == nil {
		onError = defaultOnError
	}

	verifyCfg := cfg.Verify

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := readBody(r, cfg.MaxBodyBytes)
			if err != nil {
				logRejection(cfg.Logger, r, err)
				onError(w, r, err)
				return
			}

			identity, err := VerifyRequest(r, body, verifyCfg)
			if err != nil {
				logRejection(cfg.Logger, r, err)
				onError(w, r, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, identity))

			next.ServeHTTP(w, r)
		})
	}, nil
}

// readBody consumes and returns the request body, optionally capped at
// limit bytes.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	var reader io.Reader = r.Body
	if limit > 0 {
		reader = io.LimitReader(r.Body, limit)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	r.Body.Close()

	return body, nil
}

// logRejection writes one structured entry per rejected request with the
// internal reason, which never reaches the wire.
func logRejection(logger logrus.FieldLogger, r *http.Request, err error) {
	if logger == nil {
		return
	}

	entry := logger.WithFields(logrus.Fields{
		"worker_id":   r.Header.Get(HeaderWorkerID),
		"remote_addr": r.RemoteAddr,
		"reason":      err.Error(),
	})

	if errors.Is(err, ErrKeyUnavailable) {
		entry.Error("request authentication failed: server misconfiguration")
	} else {
		entry.Warn("request authentication failed")
	}
}

// defaultOnError writes a generic 401 response. The body is identical for
// every rejection reason so callers cannot probe which check failed.
func defaultOnError(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, "authentication failed", http.StatusUnauthorized)
}
