// Package editor drives one editing session: upload, mask, generate, review,
// apply and upscale, with a linear history of applied results.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"archedit/internal/compare"
	"archedit/internal/domain"
	"archedit/internal/export"
	"archedit/internal/history"
	"archedit/internal/imaging"
	"archedit/internal/infra"
	"archedit/internal/infra/credentials"
	"archedit/internal/mask"
	imageprovider "archedit/internal/providers/image"
)

// State is the orchestrator state exposed to clients.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingGeneration State = "awaiting_generation"
	StateResultPending      State = "result_pending"
	StateError              State = "error"
)

const entityNotFound = "Requested entity was not found"

// CredentialSource resolves the API key for one remote call.
type CredentialSource interface {
	Resolve(ctx context.Context) (credentials.Credential, bool, error)
}

// BlobStore keeps image bytes addressed by content.
type BlobStore interface {
	Put(ctx context.Context, img domain.EncodedImage) (domain.BlobRef, error)
	Get(ctx context.Context, ref domain.BlobRef) (domain.EncodedImage, error)
}

// Deps are the collaborators shared by every session. MaxPixels bounds
// uploads, display layouts and rendered comparisons.
type Deps struct {
	Generator     imageprovider.Generator
	Blobs         BlobStore
	Credentials   CredentialSource
	WatermarkText string
	MaxPixels     int
	Logger        *infra.Logger
	Now           func() time.Time
}

func (d *Deps) normalize() {
	if d.MaxPixels <= 0 {
		d.MaxPixels = imaging.DefaultMaxPixels
	}
	if d.Logger == nil {
		d.Logger = infra.Discard()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Session is the working state of one editor. All fields are guarded by mu;
// remote calls run with mu released and the busy flag set.
type Session struct {
	id   string
	deps *Deps

	mu        sync.Mutex
	ledger    *history.Ledger
	surface   *mask.Surface
	slider    *compare.Slider
	dims      map[string]imaging.Info
	pending   *domain.EncodedImage
	pendingAt imaging.Info
	overlay   *domain.EncodedImage
	reference *domain.BlobRef
	prompt    string
	busy      bool
	epoch     uint64
	lastErr   *domain.Error
	failed    bool
	needsKey  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewSession builds an empty session.
func NewSession(id string, deps *Deps) *Session {
	deps.normalize()
	now := deps.Now()
	return &Session{
		id:        id,
		deps:      deps,
		ledger:    history.NewLedger(),
		surface:   mask.NewSurface(),
		slider:    compare.NewSlider(),
		dims:      map[string]imaging.Info{},
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) log() *zerolog.Logger {
	l := s.deps.Logger.With().Str("session_id", s.id).Logger()
	return &l
}

func (s *Session) touch() { s.updatedAt = s.deps.Now() }

// LastActive reports when the session last changed.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) stateLocked() State {
	switch {
	case s.busy:
		return StateAwaitingGeneration
	case s.lastErr != nil && s.failed:
		return StateError
	case s.pending != nil:
		return StateResultPending
	default:
		return StateIdle
	}
}

// rejectLocked records err as the session's error annotation without touching
// the working state. Busy and not-found rejections are not recorded.
func (s *Session) rejectLocked(err error) (Snapshot, error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err)
	}
	if de.Kind != domain.KindBusy && de.Kind != domain.KindNotFound {
		s.lastErr = de
		s.failed = false
		s.touch()
	}
	return s.snapshotLocked(), err
}

// settleLocked drops a rejection annotation once an operation succeeds. A
// failed remote call stays visible until the next call, upload or navigation.
func (s *Session) settleLocked() {
	if !s.failed {
		s.lastErr = nil
	}
}

func (s *Session) clearErrorLocked() {
	s.lastErr = nil
	s.failed = false
}

// load reads a stored image. Storage failures are reported as internal.
func (s *Session) load(ctx context.Context, ref domain.BlobRef) (domain.EncodedImage, error) {
	img, err := s.deps.Blobs.Get(ctx, ref)
	if err == nil {
		return img, nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return domain.EncodedImage{}, err
	}
	return domain.EncodedImage{}, domain.Internal(fmt.Errorf("load image %s: %w", ref.Key, err))
}

func (s *Session) store(ctx context.Context, img domain.EncodedImage) (domain.BlobRef, error) {
	ref, err := s.deps.Blobs.Put(ctx, img)
	if err != nil {
		return domain.BlobRef{}, domain.Internal(fmt.Errorf("store image: %w", err))
	}
	return ref, nil
}

func (s *Session) sourceLocked() (domain.BlobRef, bool) {
	step, ok := s.ledger.Current()
	if !ok {
		return domain.BlobRef{}, false
	}
	return step.Image, true
}

// Upload replaces everything with a new original image.
func (s *Session) Upload(ctx context.Context, data []byte) (Snapshot, error) {
	info, ierr := imaging.InspectWithin(data, s.deps.MaxPixels)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.snapshotLocked(), domain.ErrBusy
	}
	if ierr != nil {
		return s.rejectLocked(ierr)
	}
	ref, err := s.store(ctx, domain.EncodedImage{MIME: info.MIME, Data: data})
	if err != nil {
		return s.rejectLocked(err)
	}
	s.dims[ref.Key] = info
	s.ledger.Reset()
	s.ledger.Append(history.Step{Image: ref})
	s.pending = nil
	s.overlay = nil
	s.reference = nil
	s.prompt = ""
	s.clearErrorLocked()
	s.surface.Invalidate()
	s.surface.SetTool(domain.ToolMask)
	s.surface.Load(info.Width, info.Height)
	s.touch()
	s.log().Info().Str("blob", ref.Key).Int("width", info.Width).Int("height", info.Height).Msg("editor: image uploaded")
	return s.snapshotLocked(), nil
}

// SetPrompt stores the instruction text.
func (s *Session) SetPrompt(prompt string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
	s.settleLocked()
	s.touch()
	return s.snapshotLocked()
}

// SetReference attaches an optional item reference image.
func (s *Session) SetReference(ctx context.Context, data []byte) (Snapshot, error) {
	info, err := imaging.InspectWithin(data, s.deps.MaxPixels)
	var ref domain.BlobRef
	if err == nil {
		ref, err = s.store(ctx, domain.EncodedImage{MIME: info.MIME, Data: data})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.rejectLocked(err)
	}
	s.reference = &ref
	s.settleLocked()
	s.touch()
	return s.snapshotLocked(), nil
}

func (s *Session) ClearReference() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reference = nil
	s.settleLocked()
	s.touch()
	return s.snapshotLocked()
}

// SetTool switches the canvas tool.
func (s *Session) SetTool(raw string) (Snapshot, error) {
	tool, ok := domain.ParseTool(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		return s.rejectLocked(domain.Validation(domain.CodeUnsupportedTool, "unsupported tool "+raw))
	}
	s.surface.SetTool(tool)
	s.settleLocked()
	s.touch()
	return s.snapshotLocked(), nil
}

// SetLayout refits the displayed image into a new container and redraws the
// last emitted mask onto the resized raster.
func (s *Session) SetLayout(container mask.Rect) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := container.Check(s.deps.MaxPixels); err != nil {
		return s.rejectLocked(err)
	}
	s.surface.Resize(container)
	if s.overlay != nil {
		if err := s.surface.Restore(*s.overlay); err != nil {
			s.overlay = nil
			return s.rejectLocked(err)
		}
	}
	s.settleLocked()
	s.touch()
	return s.snapshotLocked(), nil
}

func (s *Session) PointerDown(ev mask.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.PointerDown(ev)
}

func (s *Session) PointerMove(ev mask.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.PointerMove(ev)
}

// PointerUp ends a stroke; the emitted overlay becomes the working mask.
func (s *Session) PointerUp() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok, err := s.surface.PointerUp()
	if err != nil || !ok {
		return false, err
	}
	s.overlay = &snap
	s.touch()
	return true, nil
}

// ClearMask wipes the overlay.
func (s *Session) ClearMask() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.Clear()
	s.overlay = nil
	s.settleLocked()
	s.touch()
	return s.snapshotLocked()
}

// MaskOverlay renders the current overlay raster.
func (s *Session) MaskOverlay() (domain.EncodedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Snapshot()
}

// resolveKeyLocked reads the credential once for the current operation.
func (s *Session) resolveKeyLocked(ctx context.Context) (string, error) {
	cred, ok, err := s.deps.Credentials.Resolve(ctx)
	if err != nil {
		return "", domain.Internal(fmt.Errorf("resolve credential: %w", err))
	}
	if !ok {
		s.needsKey = true
		return "", domain.ErrCredentialRequired
	}
	s.needsKey = false
	return cred.Key, nil
}

type call struct {
	epoch uint64
	key   string
}

// begin marks the session busy. Callers hold mu.
func (s *Session) beginLocked(key string) call {
	s.busy = true
	s.clearErrorLocked()
	s.touch()
	return call{epoch: s.epoch, key: key}
}

// finish records the outcome of a remote call. A reset during the call
// discards the outcome.
func (s *Session) finish(c call, out domain.EncodedImage, err error, op string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.epoch != s.epoch {
		s.log().Info().Str("op", op).Msg("editor: result dropped after reset")
		return s.snapshotLocked(), domain.ErrSuperseded
	}
	s.busy = false
	s.touch()
	if err == nil {
		var info imaging.Info
		if info, err = imaging.InspectWithin(out.Data, s.deps.MaxPixels); err == nil {
			s.pending = &out
			s.pendingAt = info
			s.slider.Reset()
			s.log().Info().Str("op", op).Int("bytes", len(out.Data)).Msg("editor: result pending")
			return s.snapshotLocked(), nil
		}
	}
	de := classify(err)
	s.lastErr = de
	s.failed = true
	s.log().Warn().Err(err).Str("op", op).Str("kind", string(de.Kind)).Str("code", de.Code).Msg("editor: call failed")
	return s.snapshotLocked(), de
}


// Generate sends the source image, mask, reference and prompt to the
// generator. On success the watermarked result becomes pending; on failure
// the working state is left as it was and the error is recorded. The call
// runs to completion even if ctx is cancelled; only ResetAll discards it.
func (s *Session) Generate(ctx context.Context) (Snapshot, error) {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.Snapshot(), domain.ErrBusy
	}
	src, ok := s.sourceLocked()
	if !ok {
		defer s.mu.Unlock()
		return s.rejectLocked(domain.Validation(domain.CodeImageRequired, "upload an image first"))
	}
	prompt := strings.TrimSpace(s.prompt)
	if prompt == "" {
		defer s.mu.Unlock()
		return s.rejectLocked(domain.Validation(domain.CodePromptRequired, "a prompt is required"))
	}
	key, err := s.resolveKeyLocked(ctx)
	if err != nil {
		defer s.mu.Unlock()
		return s.rejectLocked(err)
	}
	overlay := s.overlay
	reference := s.reference
	c := s.beginLocked(key)
	s.mu.Unlock()

	s.log().Info().Bool("mask", overlay != nil).Bool("reference", reference != nil).Msg("editor: generate")
	out, err := s.runEdit(ctx, c, src, overlay, reference, prompt)
	return s.finish(c, out, err, "generate")
}

func (s *Session) runEdit(ctx context.Context, c call, src domain.BlobRef, overlay *domain.EncodedImage, reference *domain.BlobRef, prompt string) (domain.EncodedImage, error) {
	img, err := s.load(ctx, src)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	req := imageprovider.EditRequest{
		Image:  img,
		Mask:   overlay,
		Prompt: imageprovider.FullPrompt(prompt),
		APIKey: c.key,
	}
	if reference != nil {
		ref, err := s.load(ctx, *reference)
		if err != nil {
			return domain.EncodedImage{}, err
		}
		req.Reference = &ref
	}
	out, err := s.deps.Generator.Edit(ctx, req)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	return imaging.ApplyWatermark(out, s.deps.WatermarkText)
}

// Upscale re-renders the pending result, or the source when nothing is
// pending, at res. The result replaces the pending slot and is never applied
// automatically.
func (s *Session) Upscale(ctx context.Context, res domain.Resolution) (Snapshot, error) {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.Snapshot(), domain.ErrBusy
	}
	if res != domain.Resolution2K && res != domain.Resolution4K {
		defer s.mu.Unlock()
		return s.rejectLocked(domain.Validation(domain.CodeInvalidResolution, "resolution must be 2K or 4K"))
	}
	var input *domain.EncodedImage
	if s.pending != nil {
		p := *s.pending
		input = &p
	}
	src, hasSource := s.sourceLocked()
	if input == nil && !hasSource {
		defer s.mu.Unlock()
		return s.rejectLocked(domain.Validation(domain.CodeNothingToUpscale, "there is no image to upscale"))
	}
	key, err := s.resolveKeyLocked(ctx)
	if err != nil {
		defer s.mu.Unlock()
		return s.rejectLocked(err)
	}
	prompt := imageprovider.UpscalePrompt(s.prompt, res)
	c := s.beginLocked(key)
	s.mu.Unlock()

	s.log().Info().Str("resolution", string(res)).Bool("from_pending", input != nil).Msg("editor: upscale")
	out, err := s.runUpscale(ctx, c, input, src, prompt, res)
	return s.finish(c, out, err, "upscale")
}

func (s *Session) runUpscale(ctx context.Context, c call, input *domain.EncodedImage, src domain.BlobRef, prompt string, res domain.Resolution) (domain.EncodedImage, error) {
	var img domain.EncodedImage
	if input != nil {
		img = *input
	} else {
		loaded, err := s.load(ctx, src)
		if err != nil {
			return domain.EncodedImage{}, err
		}
		img = loaded
	}
	out, err := s.deps.Generator.Upscale(ctx, imageprovider.UpscaleRequest{
		Image:      img,
		Prompt:     prompt,
		Resolution: res,
		APIKey:     c.key,
	})
	if err != nil {
		return domain.EncodedImage{}, err
	}
	return imaging.ApplyWatermark(out, s.deps.WatermarkText)
}

// Apply folds the pending result into the history as a new step carrying
// the current prompt.
func (s *Session) Apply(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.snapshotLocked(), domain.ErrBusy
	}
	if s.pending == nil {
		return s.rejectLocked(domain.Validation(domain.CodeNothingPending, "there is no result to apply"))
	}
	ref, err := s.store(ctx, *s.pending)
	if err != nil {
		return s.rejectLocked(err)
	}
	info := s.pendingAt
	s.dims[ref.Key] = info
	s.ledger.Append(history.Step{Image: ref, Instruction: s.prompt})
	s.pending = nil
	s.overlay = nil
	s.prompt = ""
	s.clearErrorLocked()
	s.surface.Load(info.Width, info.Height)
	s.touch()
	s.log().Info().Int("step", s.ledger.Pointer()).Msg("editor: result applied")
	return s.snapshotLocked(), nil
}

// Discard drops the pending result.
func (s *Session) Discard() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.snapshotLocked(), domain.ErrBusy
	}
	s.pending = nil
	s.settleLocked()
	s.touch()
	return s.snapshotLocked(), nil
}

// SelectIndex navigates to history step i and restores its instruction.
func (s *Session) SelectIndex(ctx context.Context, i int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.snapshotLocked(), domain.ErrBusy
	}
	step, ok := s.ledger.Select(i)
	if !ok {
		return s.snapshotLocked(), domain.NotFound(domain.CodeHistoryStepNotFound, "history step not found")
	}
	info, err := s.dimsLocked(ctx, step.Image)
	if err != nil {
		return s.rejectLocked(err)
	}
	s.pending = nil
	s.overlay = nil
	s.clearErrorLocked()
	s.prompt = step.Instruction
	s.surface.Load(info.Width, info.Height)
	s.touch()
	return s.snapshotLocked(), nil
}

func (s *Session) dimsLocked(ctx context.Context, ref domain.BlobRef) (imaging.Info, error) {
	if info, ok := s.dims[ref.Key]; ok {
		return info, nil
	}
	img, err := s.load(ctx, ref)
	if err != nil {
		return imaging.Info{}, err
	}
	info, err := imaging.InspectWithin(img.Data, s.deps.MaxPixels)
	if err != nil {
		return imaging.Info{}, err
	}
	s.dims[ref.Key] = info
	return info, nil
}

// ResetAll clears the session. It is allowed while a call is in flight; the
// late result is dropped.
func (s *Session) ResetAll() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.busy = false
	s.ledger.Reset()
	s.pending = nil
	s.overlay = nil
	s.reference = nil
	s.prompt = ""
	s.clearErrorLocked()
	s.needsKey = false
	s.dims = map[string]imaging.Info{}
	s.surface.Invalidate()
	s.surface.SetTool(domain.ToolMask)
	s.slider.Reset()
	s.touch()
	s.log().Info().Msg("editor: session reset")
	return s.snapshotLocked()
}

// Download returns the pending result if any, else the source image.
func (s *Session) Download(ctx context.Context) (export.File, error) {
	s.mu.Lock()
	pending := s.pending
	src, ok := s.sourceLocked()
	s.mu.Unlock()
	if pending != nil {
		return export.File{Name: export.DownloadName, MIME: pending.MIME, Data: pending.Data}, nil
	}
	if !ok {
		return export.File{}, domain.Validation(domain.CodeImageRequired, "no image to download")
	}
	img, err := s.load(ctx, src)
	if err != nil {
		return export.File{}, err
	}
	return export.File{Name: export.DownloadName, MIME: img.MIME, Data: img.Data}, nil
}

// SourceImage returns the bytes of the image currently shown.
func (s *Session) SourceImage(ctx context.Context) (domain.EncodedImage, error) {
	s.mu.Lock()
	src, ok := s.sourceLocked()
	s.mu.Unlock()
	if !ok {
		return domain.EncodedImage{}, domain.Validation(domain.CodeImageRequired, "no image uploaded")
	}
	return s.load(ctx, src)
}

// PendingImage returns the unapplied result.
func (s *Session) PendingImage() (domain.EncodedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.EncodedImage{}, domain.Validation(domain.CodeNothingPending, "there is no pending result")
	}
	return *s.pending, nil
}

// StepImage returns the image of history step i.
func (s *Session) StepImage(ctx context.Context, i int) (domain.EncodedImage, error) {
	s.mu.Lock()
	step, ok := s.ledger.At(i)
	s.mu.Unlock()
	if !ok {
		return domain.EncodedImage{}, domain.NotFound(domain.CodeHistoryStepNotFound, "history step not found")
	}
	return s.load(ctx, step.Image)
}

// History returns the ledger in chronological order and the pointer.
func (s *Session) History() ([]history.Step, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Steps(), s.ledger.Pointer()
}

// ExportFiles names every history image plus the pending result.
func (s *Session) ExportFiles(ctx context.Context, prefix string) ([]export.File, error) {
	s.mu.Lock()
	steps := s.ledger.Steps()
	pending := s.pending
	s.mu.Unlock()

	images := make([]domain.EncodedImage, 0, len(steps))
	for _, step := range steps {
		img, err := s.load(ctx, step.Image)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return export.Files(prefix, images, pending), nil
}

// classify turns the outcome of a call into the recorded error. Local
// failures keep their kind; only remote errors are subject to the
// entity-not-found translation.
func classify(err error) *domain.Error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	typed := errors.As(err, &de)
	remote := !typed || de.Kind == domain.KindRemoteFailure || de.Kind == domain.KindRemoteRefusal
	if remote && strings.Contains(err.Error(), entityNotFound) {
		return &domain.Error{
			Kind:    domain.KindRemoteFailure,
			Code:    domain.CodeEntityNotFound,
			Message: "the API key has no permission or the project was not found; check that it is a paid-plan key",
			Err:     err,
		}
	}
	if typed {
		return de
	}
	return domain.RemoteFailure(err)
}
