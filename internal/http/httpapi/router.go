package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"archedit/internal/http/handlers"
	"archedit/internal/middleware"
)

// Options carries the cross-cutting middleware settings.
type Options struct {
	CORSOrigins     []string
	DefaultLocale   string
	RateLimitPerMin int
	GenerateLimit   int
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if app.Logger != nil {
		r.Use(middleware.Logger(*app.Logger))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}

		r.Route("/v1/settings/credential", func(r chi.Router) {
			r.Get("/", app.CredentialGet)
			r.Put("/", app.CredentialSave)
			r.Delete("/", app.CredentialClear)
		})

		r.Post("/v1/sessions", app.SessionCreate)
		r.Route("/v1/sessions/{id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionReset)

			r.Post("/image", app.SessionUpload)
			r.Get("/image", app.SessionImage)
			r.Put("/prompt", app.SessionPrompt)
			r.Put("/tool", app.SessionTool)
			r.Post("/reference", app.ReferenceSet)
			r.Delete("/reference", app.ReferenceClear)
			r.Put("/layout", app.SessionLayout)

			r.Post("/mask/events", app.MaskEvents)
			r.Get("/mask", app.MaskImage)
			r.Delete("/mask", app.MaskClear)

			r.Group(func(r chi.Router) {
				if opts.GenerateLimit > 0 {
					r.Use(middleware.RateLimitBy(opts.GenerateLimit, time.Minute, middleware.SessionKey))
				}
				r.Post("/generate", app.Generate)
				r.Post("/upscale", app.Upscale)
			})
			r.Post("/apply", app.Apply)
			r.Post("/discard", app.Discard)
			r.Get("/pending", app.Pending)

			r.Get("/history", app.History)
			r.Post("/history/{index}/select", app.HistorySelect)
			r.Get("/history/{index}/image", app.HistoryImage)

			r.Put("/comparison", app.ComparisonSlide)
			r.Get("/comparison.png", app.ComparisonImage)
			r.Get("/download", app.Download)
			r.Get("/export.zip", app.ExportZip)
		})
	})

	return r
}
