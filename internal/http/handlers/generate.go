package handlers

import (
	"net/http"

	"archedit/internal/domain"
)

type upscaleRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.Generate(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) Upscale(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req upscaleRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	res, ok := domain.ParseResolution(req.Resolution)
	if !ok {
		a.fail(w, r, domain.Validation(domain.CodeInvalidResolution, "resolution must be 2K or 4K"))
		return
	}
	snap, err := s.Upscale(r.Context(), res)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) Apply(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.Apply(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) Discard(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.Discard()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) Pending(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := s.PendingImage()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, img, "")
}
