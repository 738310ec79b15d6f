package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate"
	candidaterepo "github.com/ovaphlow/pitchfork/service-ats/internal/candidate/repo"
	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog"
	catalogentity "github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/stage"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

const apiPrefix = "/api"

// RegisterRoutes mounts every handler on a standard library http.ServeMux and
// wraps it with the middleware chain, outermost first: recover, request id,
// logging, metrics, CORS, rate limit, security headers.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, cfg Config) http.Handler {
	mux := http.NewServeMux()
	metrics := NewMetrics()

	mux.HandleFunc("GET "+apiPrefix+"/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			utilities.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	catalogSvc := catalog.NewService(db)
	catalogHandler := catalog.NewHandler(catalogSvc, logger)
	mux.HandleFunc("GET "+apiPrefix+"/candidates/phone-types", catalogHandler.List(catalogentity.PhoneTypes))
	mux.HandleFunc("GET "+apiPrefix+"/candidates/address-types", catalogHandler.List(catalogentity.AddressTypes))
	mux.HandleFunc("GET "+apiPrefix+"/candidates/education-types", catalogHandler.List(catalogentity.EducationTypes))
	mux.HandleFunc("GET "+apiPrefix+"/candidates/experience-types", catalogHandler.List(catalogentity.ExperienceTypes))

	candidateSvc := candidate.NewService(candidaterepo.NewRepo(db), catalogSvc)
	candidate.NewHandler(candidateSvc, logger).Register(mux, apiPrefix+"/candidates")

	stage.NewHandler(stage.NewService(db), logger).Register(mux, apiPrefix)

	var handler http.Handler = mux
	handler = SecurityHeadersMiddleware()(handler)
	handler = RateLimitMiddleware(cfg.RateLimitMax, cfg.RateLimitWindow)(handler)
	handler = CORSMiddleware(cfg.CORSOrigin)(handler)
	handler = metrics.Middleware(mux)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = RecoverMiddleware(logger)(handler)
	return handler
}
