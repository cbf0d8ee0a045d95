package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jinxed112/fritos-dispatch/api/controllers"
	"github.com/jinxed112/fritos-dispatch/api/middleware"
	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	"github.com/jinxed112/fritos-dispatch/internal/kitchen"
	"github.com/jinxed112/fritos-dispatch/internal/rounds"
	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/internal/slots"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
	pkgredis "github.com/jinxed112/fritos-dispatch/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *pkgredis.Client
	Generator *slots.Generator
	Ledger    *slots.Ledger
	Schedule  *schedule.Service
	Clusters  *clustering.Service
	Rounds    *rounds.Service
	Kitchen   *kitchen.Service
}

func NewRouter(deps Dependencies) http.Handler {
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/establishments/{establishmentID}", func(r chi.Router) {
			r.Get("/slots", controllers.SlotsList(deps.Generator, logg))
			r.Post("/slots/reservations", controllers.ReservationCreate(deps.Ledger, deps.Schedule, logg))

			r.Get("/delivery-clusters", controllers.ClustersList(deps.Clusters, logg))

			r.Post("/delivery-rounds", controllers.RoundCommit(deps.Rounds, logg))
			r.Get("/delivery-rounds", controllers.RoundsList(deps.Rounds, logg))

			r.Post("/kitchen/recalculate", controllers.KitchenRecalculate(deps.Kitchen, logg))
		})

		r.Delete("/reservations/{reservationID}", controllers.ReservationCancel(deps.Ledger, logg))
		r.Delete("/orders/{orderID}/reservation", controllers.OrderReservationCancel(deps.Ledger, logg))

		r.Get("/delivery-rounds/{roundID}", controllers.RoundGet(deps.Rounds, logg))
		r.Delete("/delivery-rounds/{roundID}", controllers.RoundCancel(deps.Rounds, logg))
	})

	return r
}
