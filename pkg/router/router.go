package router

import (
	"fmt"
	"net/http"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/auth"
	"github.com/citizenwallet/govdash/internal/dashboard"
	"github.com/citizenwallet/govdash/internal/governance"
	"github.com/citizenwallet/govdash/internal/version"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	apiKey    string
	chainName string
	keystore  bool
	roles     map[string]common.Hash
	app       *app.App
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
}

func NewServer(apiKey, chainName string, keystore bool, roles map[string]common.Hash, a *app.App, gatherer prometheus.Gatherer, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Router{
		apiKey,
		chainName,
		keystore,
		roles,
		a,
		gatherer,
		logger,
	}
}

// Handler builds the dashboard routes
func (r *Router) Handler() (http.Handler, error) {
	cr := chi.NewRouter()

	a := auth.New(r.apiKey)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(LoggerMiddleware(r.logger))
	cr.Use(middleware.Recoverer)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(1 << 20)) // Limit request bodies to 1MB
	cr.Use(a.AuthMiddleware)
	cr.Use(middleware.Compress(9))

	// instantiate handlers
	v := version.NewService(r.chainName)
	gov := governance.NewService(r.app, r.roles)
	dash, err := dashboard.NewService(r.app, dashboard.Options{
		ChainName: r.chainName,
		Roles:     r.roles,
		Keystore:  r.keystore,
		APIKey:    r.apiKey,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}

	// configure routes
	cr.Get("/version", v.Current)

	if r.gatherer != nil {
		cr.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}

	cr.Get("/", dash.Index)
	cr.Post("/connect", dash.Connect)
	cr.Post("/disconnect", dash.Disconnect)
	cr.Post("/refresh", dash.Refresh)
	cr.Post("/proposals", dash.Propose)
	cr.Route("/proposals/{id}", func(cr chi.Router) {
		cr.Post("/vote", dash.Vote)
		cr.Post("/queue", dash.Queue)
		cr.Post("/execute", dash.Execute)
	})
	cr.Post("/mint", dash.Mint)
	cr.Post("/delegate", dash.Delegate)
	cr.Post("/grant-role", dash.GrantRole)

	cr.Route("/api", func(cr chi.Router) {
		cr.Get("/state", gov.GetState)
		cr.Get("/action", gov.GetAction)

		cr.Post("/connect", gov.Connect)
		cr.Post("/disconnect", gov.Disconnect)

		cr.Route("/proposals", func(cr chi.Router) {
			cr.Get("/", gov.GetProposals)
			cr.Post("/", gov.Propose)
			cr.Post("/refresh", gov.RefreshProposals)

			cr.Route("/{id}", func(cr chi.Router) {
				cr.Post("/votes", gov.Vote)
				cr.Post("/queue", gov.Queue)
				cr.Post("/execute", gov.Execute)
			})
		})

		cr.Route("/token", func(cr chi.Router) {
			cr.Post("/mint", gov.Mint)
			cr.Post("/delegate", gov.Delegate)
		})

		cr.Route("/roles", func(cr chi.Router) {
			cr.Get("/admin", gov.IsAdmin)
			cr.Post("/grant", gov.GrantRole)
		})
	})

	return cr, nil
}

// Start serves the dashboard on port until the server fails
func (r *Router) Start(port int) error {
	h, err := r.Handler()
	if err != nil {
		return err
	}

	// start the server
	return http.ListenAndServe(fmt.Sprintf(":%v", port), h)
}
