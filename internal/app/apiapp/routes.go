package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/config"
	redrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/redis"
	analyticsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/analytics"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
	dirsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/directory"
	geosvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/geo"
	mediasvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/media"
	modsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/moderation"
	ownerssvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/owners"
	ratesvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/rate"
	reviewsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/reviews"
	subsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/submissions"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	DirectoryService  *dirsvc.Service
	GeoService        *geosvc.Service
	SubmissionService *subsvc.Service
	ModerationService *modsvc.Service
	OwnerService      *ownerssvc.Service
	MediaService      *mediasvc.Service
	ReviewService     *reviewsvc.Service
	AnalyticsService  *analyticsvc.Service
	SubmitLimiter     *ratesvc.Limiter
	ReviewLimiter     *ratesvc.Limiter
	PageCache         *redrepo.CacheRepo
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	directoryHandler := handlers.NewDirectoryHandler(deps.DirectoryService, deps.GeoService, deps.PageCache, deps.Logger)
	submissionHandler := handlers.NewSubmissionHandler(deps.SubmissionService, deps.SubmitLimiter)
	reviewHandler := handlers.NewReviewHandler(deps.ReviewService, deps.ReviewLimiter)
	ownerHandler := handlers.NewOwnerHandler(deps.OwnerService, deps.SubmissionService, deps.ModerationService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	adminHandler := handlers.NewAdminHandler(deps.ModerationService, deps.ReviewService)
	eventsHandler := handlers.NewEventsHandler(deps.AnalyticsService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	ownerRoleMW := RequireRole("owner")
	adminRoleMW := RequireRole("admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/businesses", directoryHandler.List)
		r.Get("/businesses/{slug}", directoryHandler.Detail)
		r.Get("/businesses/{slug}/reviews", reviewHandler.List)
		r.Post("/businesses/{slug}/reviews", reviewHandler.Create)
		r.Post("/submissions", submissionHandler.Create)
		r.Get("/categories", directoryHandler.Categories)
		r.Get("/neighborhoods", directoryHandler.Neighborhoods)
		r.Get("/neighborhoods/nearest", directoryHandler.Nearest)
		r.Post("/events/batch", eventsHandler.Batch)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/owner/register", authHandler.OwnerRegister)
		r.Post("/owner/login", authHandler.OwnerLogin)
		r.Post("/admin/login", authHandler.AdminLogin)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/owner", func(r chi.Router) {
		r.Use(authMW, ownerRoleMW)
		r.Get("/businesses", ownerHandler.ListMine)
		r.Post("/businesses/{id}/edit", ownerHandler.SubmitEdit)
		r.Get("/businesses/{id}/edit", ownerHandler.LatestEdit)
		r.Post("/edits/{id}/dismiss", ownerHandler.DismissEdit)
		r.Post("/submissions/{id}/discard", ownerHandler.DiscardSubmission)
		r.Post("/businesses/{id}/photos", mediaHandler.Upload)
		r.Get("/businesses/{id}/photos", mediaHandler.List)
		r.Delete("/businesses/{id}/photos/{photoID}", mediaHandler.Delete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Get("/submissions", adminHandler.PendingSubmissions)
		r.Get("/edits", adminHandler.PendingEdits)
		r.Post("/submissions/{id}/approve", adminHandler.ApproveSubmission)
		r.Post("/submissions/{id}/reject", adminHandler.RejectSubmission)
		r.Post("/submissions/{id}/discard", adminHandler.DiscardSubmission)
		r.Post("/edits/{id}/approve", adminHandler.ApproveEdit)
		r.Post("/edits/{id}/reject", adminHandler.RejectEdit)
		r.Post("/edits/{id}/dismiss", adminHandler.DismissEdit)
		r.Post("/businesses", adminHandler.CreateBusiness)
		r.Patch("/businesses/{id}", adminHandler.UpdateBusiness)
		r.Delete("/businesses/{id}", adminHandler.RemoveBusiness)
		r.Post("/reviews/{id}/approve", adminHandler.ApproveReview)
		r.Post("/reviews/{id}/flag", adminHandler.FlagReview)
		r.Delete("/reviews/{id}", adminHandler.DeleteReview)
	})
}
