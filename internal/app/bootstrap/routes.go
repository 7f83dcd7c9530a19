// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/boatfinder/internal/app/features/admin"
	availabilityfeature "github.com/dalemusser/boatfinder/internal/app/features/availability"
	healthfeature "github.com/dalemusser/boatfinder/internal/app/features/health"
	sitesfeature "github.com/dalemusser/boatfinder/internal/app/features/sites"
	usersfeature "github.com/dalemusser/boatfinder/internal/app/features/users"
	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	intereststore "github.com/dalemusser/boatfinder/internal/app/store/interests"
	sitestore "github.com/dalemusser/boatfinder/internal/app/store/sites"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Boat Finder serves a JSON API for a
// separately hosted SPA: /health is open, everything under /api requires
// an authenticated principal, and the admin endpoints check further.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(deps.MongoDatabase)
	avail := availabilitystore.New(deps.MongoDatabase)
	sites := sitestore.New(deps.MongoDatabase)
	interests := intereststore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Global auth middleware: decodes the platform principal header into
	// the request context so handlers can use auth.CurrentPrincipal(r).
	r.Use(auth.LoadPrincipal)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireUser)

		usersHandler := usersfeature.NewHandler(users, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		availHandler := availabilityfeature.NewHandler(avail, users, logger)
		api.Mount("/availability", availabilityfeature.Routes(availHandler))

		sitesHandler := sitesfeature.NewHandler(sites, interests, users, logger)
		api.Mount("/sites", sitesfeature.Routes(sitesHandler))

		adminHandler := adminfeature.NewHandler(users, digestRunner, appCfg.AdminEmail, logger)
		api.Mount("/adminapi", adminfeature.Routes(adminHandler))
	})

	// The SPA lives on a different origin, so the API needs CORS with
	// credentials and the principal header allowed.
	c := cors.New(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.PrincipalHeader},
		AllowCredentials: true,
	})

	return c.Handler(r), nil
}
