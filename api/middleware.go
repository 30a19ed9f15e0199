package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/warp/jobs-ledger/ledger"
)

// ProfileHeader carries the caller's profile ID.
const ProfileHeader = "profile_id"

// kindUnauthenticated is an HTTP-only kind; the ledger never sees the request.
const kindUnauthenticated ledger.Kind = "unauthenticated"

type profileKey struct{}

// ProfileMiddleware resolves the profile_id header to a Profile and puts it
// in the request context. Missing, malformed and unknown IDs all get 401.
func (h *Handler) ProfileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ProfileHeader)
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", kindUnauthenticated)
			return
		}

		profile, err := h.Store.GetProfile(r.Context(), ledger.ProfileID(id))
		if err != nil {
			if errors.Is(err, ledger.ErrProfileNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthenticated", kindUnauthenticated)
				return
			}
			h.Log.Error().Err(err).Msg("failed to resolve profile")
			writeError(w, http.StatusInternalServerError, "internal error", ledger.KindInternal)
			return
		}

		ctx := context.WithValue(r.Context(), profileKey{}, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ProfileFromContext returns the profile resolved by ProfileMiddleware.
func ProfileFromContext(ctx context.Context) (ledger.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(ledger.Profile)
	return p, ok
}

// requester is only called behind ProfileMiddleware.
func requester(r *http.Request) ledger.Profile {
	p, _ := ProfileFromContext(r.Context())
	return p
}

// RequestLogger writes one access log line per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
