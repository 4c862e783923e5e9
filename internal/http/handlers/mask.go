package handlers

import (
	"net/http"

	"archedit/internal/mask"
)

type pointerEvent struct {
	Type string  `json:"type" validate:"oneof=down move up"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type maskEventsRequest struct {
	Events []pointerEvent `json:"events" validate:"required,min=1,dive"`
}

type maskEventsResponse struct {
	Accepted  int  `json:"accepted"`
	Committed bool `json:"committed"`
}

// MaskEvents replays a batch of pointer events against the overlay.
func (a *App) MaskEvents(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req maskEventsRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	var resp maskEventsResponse
	for _, ev := range req.Events {
		switch ev.Type {
		case "down":
			if s.PointerDown(mask.Event{X: ev.X, Y: ev.Y}) {
				resp.Accepted++
			}
		case "move":
			if s.PointerMove(mask.Event{X: ev.X, Y: ev.Y}) {
				resp.Accepted++
			}
		case "up":
			ok, err := s.PointerUp()
			if err != nil {
				a.fail(w, r, err)
				return
			}
			if ok {
				resp.Accepted++
				resp.Committed = true
			}
		}
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) MaskImage(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := s.MaskOverlay()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, img, "")
}

func (a *App) MaskClear(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s.ClearMask())
}
