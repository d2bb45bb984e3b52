package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HarshArya1405/typescriptDemo/api/controllers"
	"github.com/HarshArya1405/typescriptDemo/api/middleware"
	"github.com/HarshArya1405/typescriptDemo/internal/content"
	"github.com/HarshArya1405/typescriptDemo/internal/followers"
	"github.com/HarshArya1405/typescriptDemo/internal/identity"
	"github.com/HarshArya1405/typescriptDemo/internal/onboarding"
	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/internal/votes"
	"github.com/HarshArya1405/typescriptDemo/internal/wallets"
	"github.com/HarshArya1405/typescriptDemo/pkg/auth0"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/metrics"
	pkgredis "github.com/HarshArya1405/typescriptDemo/pkg/redis"
	"github.com/HarshArya1405/typescriptDemo/pkg/storage/s3"
)

// Cache is the Redis surface the HTTP layer needs.
type Cache interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Cache    Cache
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
	Storage  s3.Signer
	Verifier auth0.TokenVerifier

	Identity   identity.Service
	Users      users.Service
	Roles      roles.Service
	Tags       tags.Service
	Protocols  protocols.Service
	Wallets    wallets.Service
	Followers  followers.Service
	Onboarding onboarding.Service
	Content    content.Service
	Votes      votes.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	admin := enums.RoleAdmin.String()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Cache, logg))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotency := middleware.Idempotency(d.Cache, logg)
	requireAdmin := middleware.RequireRole(admin, logg)
	selfOrAdmin := func(param string) func(http.Handler) http.Handler {
		return middleware.SelfOrRole(param, admin, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(
			middleware.RateLimit(middleware.CheckUserPolicy(cfg.RateLimit), d.Cache, logg),
			idempotency,
		).Post("/auth/checkUser", controllers.CheckUser(d.Identity, d.Verifier, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(idempotency)

			r.Post("/auth/linkUser", controllers.LinkUser(d.Identity, logg))
			r.Post("/auth/unlinkUser", controllers.UnlinkUser(d.Identity, logg))

			r.Get("/auth0-user", controllers.ListIdentities(d.Identity, logg))
			r.Get("/auth0-user/{id}", controllers.GetIdentity(d.Identity, logg))
			r.With(requireAdmin).Put("/auth0-user/{id}", controllers.UpdateIdentity(d.Identity, logg))

			r.Post("/user", controllers.CreateUser(d.Users, logg))
			r.Get("/user", controllers.ListUsers(d.Users, logg))
			r.Get("/user/creators", controllers.ListCreators(d.Users, logg))
			r.Get("/user/{id}", controllers.GetUser(d.Users, logg))
			r.With(middleware.SelfOnly("id", logg)).Put("/user/{id}", controllers.UpdateUser(d.Users, logg))
			r.With(selfOrAdmin("id")).Delete("/user/{id}", controllers.DeleteUser(d.Users, logg))

			r.With(selfOrAdmin("userId")).Post("/user/{userId}/tags", controllers.SaveUserTags(d.Users, logg))
			r.With(selfOrAdmin("userId")).Put("/user/{userId}/tags", controllers.SaveUserTags(d.Users, logg))
			r.Get("/user/{userId}/tags", controllers.ListUserTags(d.Users, logg))
			r.With(selfOrAdmin("userId")).Post("/user/{userId}/protocols", controllers.SaveUserProtocols(d.Users, logg))
			r.With(selfOrAdmin("userId")).Put("/user/{userId}/protocols", controllers.SaveUserProtocols(d.Users, logg))
			r.Get("/user/{userId}/protocols", controllers.ListUserProtocols(d.Users, logg))

			r.With(selfOrAdmin("userId")).Post("/user/{userId}/onboardFunnel", controllers.SetOnboardingStage(d.Onboarding, logg))
			r.Get("/user/{userId}/onboardFunnel", controllers.GetOnboardingFunnel(d.Onboarding, logg))
			r.With(selfOrAdmin("userId")).Delete("/user/{userId}/onboardFunnel", controllers.DeleteOnboardingStage(d.Onboarding, logg))

			r.With(selfOrAdmin("userId")).Post("/user/{userId}/saveSocialHandle", controllers.SaveSocialHandle(d.Users, logg))
			r.Get("/user/{userId}/socialHandle", controllers.ListSocialHandles(d.Users, logg))
			r.With(selfOrAdmin("userId")).Get("/user/{userId}/auth", controllers.ListUserIdentities(d.Identity, logg))

			r.With(requireAdmin).Post("/role", controllers.CreateRole(d.Roles, logg))
			r.With(requireAdmin).Post("/role/bootstrap", controllers.BootstrapRoles(d.Roles, logg))
			r.Get("/role/{name}", controllers.GetRole(d.Roles, logg))
			r.With(requireAdmin).Put("/role/{id}", controllers.UpdateRole(d.Roles, logg))
			r.With(requireAdmin).Put("/role/{userId}/updateRoles", controllers.UpdateUserRoles(d.Users, logg))

			r.With(requireAdmin).Post("/tag", controllers.CreateTag(d.Tags, logg))
			r.Get("/tag", controllers.ListTags(d.Tags, logg))
			r.With(requireAdmin).Put("/tag/{id}", controllers.UpdateTag(d.Tags, logg))
			r.With(requireAdmin).Delete("/tag/{id}", controllers.DeleteTag(d.Tags, logg))
			r.With(requireAdmin).Post("/tag/fetchAndDump", controllers.FetchTags(d.Tags, logg))

			r.Get("/protocol", controllers.ListProtocols(d.Protocols, logg))
			r.With(requireAdmin).Post("/protocol/fetchAndDump", controllers.FetchProtocols(d.Protocols, logg))

			r.With(selfOrAdmin("userId")).Post("/wallets/{userId}", controllers.CreateWallet(d.Wallets, logg))
			r.Get("/wallets", controllers.ListWallets(d.Wallets, logg))
			r.With(selfOrAdmin("userId")).Get("/wallets/{userId}/{id}", controllers.GetWallet(d.Wallets, logg))
			r.With(selfOrAdmin("userId")).Put("/wallets/{userId}/{id}", controllers.UpdateWallet(d.Wallets, logg))
			r.With(selfOrAdmin("userId")).Delete("/wallets/{userId}/{id}", controllers.DeleteWallet(d.Wallets, logg))

			r.Get("/content/video", controllers.ListVideos(d.Content, logg))
			r.With(selfOrAdmin("creatorId")).Post("/content/{creatorId}/video", controllers.CreateVideo(d.Content, logg))
			r.With(selfOrAdmin("creatorId")).Post("/content/{creatorId}/video/import", controllers.ImportVideos(d.Content, logg))
			r.Get("/content/{creatorId}/video/{id}", controllers.GetVideo(d.Content, logg))
			r.With(selfOrAdmin("creatorId")).Put("/content/{creatorId}/video/{id}", controllers.UpdateVideo(d.Content, logg))
			r.With(selfOrAdmin("creatorId")).Delete("/content/{creatorId}/video/{id}", controllers.DeleteVideo(d.Content, logg))

			r.Get("/content/text", controllers.ListTexts(d.Content, logg))
			r.Get("/content/text/{id}", controllers.GetText(d.Content, logg))
			r.Put("/content/text/{id}", controllers.UpdateText(d.Content, logg))
			r.Delete("/content/text/{id}", controllers.DeleteText(d.Content, logg))
			r.With(selfOrAdmin("userId")).Post("/content/{userId}/text", controllers.CreateText(d.Content, logg))

			r.Post("/content/{contentId}/vote", controllers.CastVote(d.Votes, logg))
			r.Get("/content/{contentId}/vote", controllers.ListVotes(d.Votes, logg))

			r.Post("/s3/getUploadSignedUrl", controllers.UploadSignedURL(d.Storage, logg))
		})
	})

	r.Route("/creator-followers", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(idempotency)

		r.Post("/toggle-follow", controllers.ToggleFollow(d.Followers, logg))
		r.Get("/{learnerId}", controllers.ListFollowedCreators(d.Followers, logg))
		r.Get("/{creatorId}/learner", controllers.ListCreatorLearners(d.Followers, logg))
	})

	return r
}
