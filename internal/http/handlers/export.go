package handlers

import (
	"fmt"
	"net/http"

	"archedit/internal/domain"
	"archedit/internal/export"
)

type sliderRequest struct {
	Position *float64 `json:"position"`
	ClientX  float64  `json:"client_x"`
	Left     float64  `json:"left"`
	Width    float64  `json:"width"`
}

// ComparisonSlide moves the divider either to an absolute position or by
// mapping a drag over the view box.
func (a *App) ComparisonSlide(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req sliderRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	var pos float64
	if req.Position != nil {
		pos = s.SlideTo(*req.Position)
	} else {
		pos = s.DragSlider(req.ClientX, req.Left, req.Width)
	}
	a.json(w, http.StatusOK, map[string]float64{"position": pos})
}

func (a *App) ComparisonImage(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := s.Comparison(r.Context(), queryInt(r, "w", 0), queryInt(r, "h", 0))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, img, "")
}

func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	file, err := s.Download(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, domain.EncodedImage{MIME: file.MIME, Data: file.Data}, file.Name)
}

// ExportZip streams every history image plus the pending result as one
// archive.
func (a *App) ExportZip(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	prefix := a.exportPrefix(r)
	files, err := s.ExportFiles(r.Context(), prefix)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(files) == 0 {
		a.fail(w, r, domain.Validation(domain.CodeImageRequired, "nothing to export"))
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", prefix+".zip"))
	w.WriteHeader(http.StatusOK)
	em := export.NewZipEmitter(w)
	if _, err := export.All(r.Context(), em, files, 0); err != nil {
		a.Logger.Error().Err(err).Str("session_id", s.ID()).Msg("export zip interrupted")
		return
	}
	if err := em.Close(); err != nil {
		a.Logger.Error().Err(err).Str("session_id", s.ID()).Msg("export zip close")
	}
}
