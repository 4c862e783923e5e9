package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"archedit/internal/domain"
	"archedit/internal/editor"
	"archedit/internal/i18n"
	"archedit/internal/infra"
	"archedit/internal/infra/credentials"
	"archedit/internal/middleware"
	"archedit/internal/storage"
)

type App struct {
	Config      infra.Config
	Logger      *infra.Logger
	Sessions    *editor.Registry
	Credentials *credentials.Store
	Storage     storage.Backend

	validate *validator.Validate
}

func NewApp(cfg infra.Config, logger *infra.Logger, sessions *editor.Registry, creds *credentials.Store, backend storage.Backend) *App {
	return &App{
		Config:      cfg,
		Logger:      logger,
		Sessions:    sessions,
		Credentials: creds,
		Storage:     backend,
		validate:    validator.New(),
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// fail renders err as a localised JSON error with the status for its kind.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	locale := middleware.LocaleFromContext(r.Context())
	if status >= http.StatusInternalServerError && a.Logger != nil {
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	a.error(w, status, domain.CodeOf(err), i18n.Message(locale, err))
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	if errors.Is(err, domain.ErrCredentialRequired) {
		return http.StatusPreconditionRequired
	}
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindCredentialFormat:
		return http.StatusBadRequest
	case domain.KindBusy:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRemoteRefusal:
		return http.StatusUnprocessableEntity
	case domain.KindRemoteFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates its tags.
func (a *App) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("bad_request", fmt.Sprintf("invalid payload: %v", err))
	}
	if err := a.validate.Struct(dst); err != nil {
		return domain.Validation("bad_request", err.Error())
	}
	return nil
}

func (a *App) session(r *http.Request) (*editor.Session, error) {
	return a.Sessions.Get(chi.URLParam(r, "id"))
}

func (a *App) image(w http.ResponseWriter, img domain.EncodedImage, filename string) {
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("bad_request", fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
