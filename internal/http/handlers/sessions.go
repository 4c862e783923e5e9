package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"archedit/internal/domain"
	"archedit/internal/export"
	"archedit/internal/imaging"
	"archedit/internal/mask"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type toolRequest struct {
	Tool string `json:"tool" validate:"required"`
}

type dataURLRequest struct {
	DataURL string `json:"data_url" validate:"required"`
}

func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	s := a.Sessions.Create()
	a.json(w, http.StatusCreated, s.Snapshot())
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionReset clears the session. With ?save=true every history image is
// first written to exports/<id>/ with the configured pacing.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var exported []string
	if r.URL.Query().Get("save") == "true" {
		files, err := s.ExportFiles(r.Context(), a.exportPrefix(r))
		if err != nil {
			a.fail(w, r, err)
			return
		}
		em := export.NewDirEmitter(a.Storage, "exports/"+s.ID())
		if _, err := export.All(r.Context(), em, files, a.Config.ExportDelay); err != nil {
			a.fail(w, r, err)
			return
		}
		exported = em.Written()
	}
	snap := s.ResetAll()
	a.json(w, http.StatusOK, map[string]any{"session": snap, "exported": exported})
}

func (a *App) SessionUpload(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := a.readImage(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.Upload(r.Context(), data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) SessionImage(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := s.SourceImage(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, img, "")
}

func (a *App) SessionPrompt(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req promptRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s.SetPrompt(req.Prompt))
}

func (a *App) SessionTool(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req toolRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.SetTool(req.Tool)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) ReferenceSet(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := a.readImage(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.SetReference(r.Context(), data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) ReferenceClear(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s.ClearReference())
}

func (a *App) SessionLayout(w http.ResponseWriter, r *http.Request) {
	s, err := a.session(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req mask.Rect
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	snap, err := s.SetLayout(req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

// readImage accepts a multipart "file" field, a JSON {"data_url"} body or the
// raw image bytes.
func (a *App) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if a.Config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, domain.Validation(domain.CodeImageRequired, "multipart field \"file\" is required")
		}
		defer file.Close()
		return readAll(file)
	case mediaType == "application/json":
		var req dataURLRequest
		if err := a.decode(r, &req); err != nil {
			return nil, err
		}
		img, err := imaging.ParseDataURL(req.DataURL)
		if err != nil {
			return nil, err
		}
		return img.Data, nil
	default:
		return readAll(r.Body)
	}
}

func readAll(src io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, domain.Validation(domain.CodeUnsupportedImage, "read upload: "+err.Error())
	}
	if buf.Len() == 0 {
		return nil, domain.Validation(domain.CodeImageRequired, "image body is empty")
	}
	return buf.Bytes(), nil
}

func (a *App) exportPrefix(r *http.Request) string {
	if p := strings.TrimSpace(r.URL.Query().Get("prefix")); p != "" {
		return p
	}
	return a.Config.ExportPrefix
}
