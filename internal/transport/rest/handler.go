package rest

import (
	"context"
	"net/http"
	"time"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ApplicationService interface {
	Submit(ctx context.Context, form domain.ApplicationForm, applicantCount int) (*domain.Application, error)
	List(ctx context.Context, f repository.ApplicationsFilter) ([]domain.Application, error)
	Find(ctx context.Context, id string) (*domain.Application, error)
	GetPDF(ctx context.Context, id string) (*domain.Application, []byte, error)
	GetFileURL(ctx context.Context, id string) (string, error)
}

type ExportService interface {
	StartApplicationsExport(
		ctx context.Context,
		selected []string,
		filter repository.ApplicationsFilter,
		userID int64,
	) (string, error)
}

type StatusService interface {
	GetGenerations(ctx context.Context) ([]interface{}, error)
	GetGeneration(ctx context.Context, key string) (interface{}, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type Handler struct {
	applications ApplicationService
	exports      ExportService
	statuses     StatusService
	auth         AuthService
	cookieMaxAge time.Duration
}

func NewHandler(applications ApplicationService, exports ExportService, statuses StatusService, authSvc AuthService, cookieMaxAge time.Duration) *Handler {
	return &Handler{
		applications: applications,
		exports:      exports,
		statuses:     statuses,
		auth:         authSvc,
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

// InitRouterWithAuth builds the API router. The intake form endpoints
// stay public; everything the admin dashboard uses goes behind the auth
// middleware.
func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	stdTimeout := middleware.Timeout(60 * time.Second)
	// the pdf download may regenerate synchronously (browser launch plus
	// up to five page renders plus merge), so it gets a longer window
	pdfTimeout := middleware.Timeout(2 * time.Minute)

	r.With(stdTimeout).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		Success(w, "ok", nil)
	})
	r.With(stdTimeout).Post("/auth/login", h.login)

	r.Route("/applications", func(r chi.Router) {
		// public intake surface; never behind auth
		r.With(stdTimeout).Post("/", h.submitApplication)

		r.Group(func(r chi.Router) {
			r.Use(stdTimeout)
			if authMiddleware != nil {
				r.Use(authMiddleware)
			}
			r.Get("/", h.listApplications)
			r.Get("/{application_id}", h.getApplication)
			r.Get("/{application_id}/file", h.getApplicationFileURL)
		})

		r.Group(func(r chi.Router) {
			r.Use(pdfTimeout)
			if authMiddleware != nil {
				r.Use(authMiddleware)
			}
			r.Get("/{application_id}/pdf", h.getApplicationPDF)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(stdTimeout)
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Post("/auth/logout", h.logout)
		r.Get("/auth/me", h.me)

		r.Route("/export", func(r chi.Router) {
			r.Post("/applications", h.exportApplications)
		})

		r.Route("/generations", func(r chi.Router) {
			r.Get("/", h.listGenerations)
			r.Get("/{generation_id}", h.getGeneration)
		})
	})

	return r
}
