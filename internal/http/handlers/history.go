package handlers

import (
	"net/http"

	"archedit/internal/history"
)

type historyResponse struct {
	Steps   []history.Step `json:"steps"`
	Pointer int            `json:"pointer"`
}

func (a *App) History(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	steps, pointer := s.History()
	a.json(w, http.StatusOK, historyResponse{Steps: steps, Pointer: pointer})
}

func (a *App) HistorySelect(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	idx, err := intParam(r, "index")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.SelectIndex(r.Context(), idx)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) HistoryImage(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	idx, err := intParam(r, "index")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := s.StepImage(r.Context(), idx)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, img, "")
}
