package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// Logger attaches a request id to the context and logs request start and end.
// A valid incoming X-Request-Id is reused.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		rqID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(rqID); err != nil {
			rqID = uuid.NewString()
		}
		ctx := utils.CreateCtxWithRqID(r.Context(), rqID)
		w.Header().Set(RequestIDHeader, rqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Int("status", ww.Status()),
				slog.String("request duration", fmt.Sprintf("%.3fs", time.Since(now).Seconds())),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Content-Type", "Content-Disposition", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
