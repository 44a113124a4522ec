package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pixel-pictures-mcp/internal/api"
	"github.com/ironsheep/pixel-pictures-mcp/internal/pixel"
)

var (
	// ErrPhase reports a gesture that is not valid in the current phase.
	ErrPhase = errors.New("not allowed in this phase")

	// ErrStale reports a response discarded because the session moved on
	// while the request was in flight.
	ErrStale = errors.New("stale response discarded")

	// ErrNoKey reports an operation that needs a saved picture.
	ErrNoKey = errors.New("picture has not been saved")

	// ErrNoCell reports grid coordinates outside the grid.
	ErrNoCell = errors.New("no such cell")
)

// DefaultSize is the initial height and width of a new drawing.
const DefaultSize = 30

// Phase is the editing phase of a session.
type Phase int

const (
	// PhaseSizing: dimensions and source picture are being chosen.
	PhaseSizing Phase = iota
	// PhaseDrawing: the grid exists and accepts paint gestures.
	PhaseDrawing
)

func (p Phase) String() string {
	switch p {
	case PhaseSizing:
		return "sizing"
	case PhaseDrawing:
		return "drawing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Service is the part of the picture service a session talks to.
// *api.Client implements it.
type Service interface {
	CreatePicture(ctx context.Context, req api.SaveRequest) (*api.SaveResponse, error)
	UpdatePicture(ctx context.Context, req api.SaveRequest) (*api.SaveResponse, error)
	Sample(ctx context.Context, req api.SampleRequest) (*pixel.Grid, error)
	Convert(ctx context.Context, sample *pixel.Grid, palette []pixel.Color) (*pixel.Grid, error)
	Delete(ctx context.Context, key api.Key) (string, error)
	Download(ctx context.Context, req api.DownloadRequest) (string, error)
}

var _ Service = (*api.Client)(nil)

// Session is one editing session: a palette, the picture being drawn, and
// everything needed to save it.
//
// Every change that invalidates in-flight results (new dimensions, a new
// source picture, starting or replacing the drawing) advances the session
// version. Sample and convert responses issued against an older version are
// discarded with ErrStale instead of overwriting newer state.
//
// A Session is safe for concurrent use.
type Session struct {
	svc Service
	log logrus.FieldLogger

	// saveMu serializes Save so that a second save always sees the key
	// assigned by the first.
	saveMu sync.Mutex

	mu      sync.Mutex
	phase   Phase
	height  int
	width   int
	source  *pixel.Source
	sample  *pixel.Grid
	grid    *pixel.Grid
	palette *pixel.Palette
	key     api.Key
	public  bool
	tags    []string
	drag    bool
	version uint64
}

// New creates a session in the sizing phase with default dimensions and a
// {white, black} palette.
func New(svc Service, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		svc:     svc,
		log:     log,
		phase:   PhaseSizing,
		height:  DefaultSize,
		width:   DefaultSize,
		palette: pixel.NewPalette(),
	}
}

// Open starts a session on an already saved picture (modify mode).
//
// The session enters the drawing phase directly. The palette is prefilled
// from the record; an empty record palette falls back to {white, black}.
func Open(svc Service, log logrus.FieldLogger, key api.Key, picture *pixel.Grid, palette []pixel.Color, tags []string, public bool) (*Session, error) {
	if key == "" {
		return nil, ErrNoKey
	}
	if picture == nil {
		return nil, fmt.Errorf("%w: no picture", pixel.ErrShape)
	}

	s := New(svc, log)
	s.phase = PhaseDrawing
	s.grid = picture.Clone()
	s.height, s.width = picture.Height(), picture.Width()
	s.palette = pixel.NewPalette(palette...)
	s.key = key
	s.public = public
	for _, t := range tags {
		s.addTagLocked(t)
	}
	return s, nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Key returns the picture key, empty until the first successful save.
func (s *Session) Key() api.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// === Sizing ===

// SetHeight changes the target height. A non-positive value, or one that
// would take the grid past pixel.MaxCells, fails with pixel.ErrRange and
// keeps the previous height; no request is issued.
// With a source picture selected, the picture is resampled.
func (s *Session) SetHeight(ctx context.Context, n int) error {
	return s.setDimension(ctx, "height", n)
}

// SetWidth is SetHeight for the width.
func (s *Session) SetWidth(ctx context.Context, n int) error {
	return s.setDimension(ctx, "width", n)
}

func (s *Session) setDimension(ctx context.Context, name string, n int) error {
	s.mu.Lock()
	if s.phase != PhaseSizing {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s can only change while sizing", ErrPhase, name)
	}
	height, width := s.height, s.width
	if name == "height" {
		height = n
	} else {
		width = n
	}
	if err := pixel.CheckSize(height, width); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s %d: %w", name, n, err)
	}
	if name == "height" {
		s.height = n
	} else {
		s.width = n
	}
	s.version++
	hasSource := s.source != nil
	s.mu.Unlock()

	if !hasSource {
		return nil
	}
	return s.resample(ctx)
}

// Dimensions returns the current height and width.
func (s *Session) Dimensions() (height, width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height, s.width
}

// SelectSource sets the picture to convert and requests a sample of it at
// the current dimensions.
func (s *Session) SelectSource(ctx context.Context, src *pixel.Source) error {
	if src == nil {
		return errors.New("no source picture")
	}

	s.mu.Lock()
	if s.phase != PhaseSizing {
		s.mu.Unlock()
		return fmt.Errorf("%w: source can only change while sizing", ErrPhase)
	}
	s.source = src
	s.sample = nil
	s.version++
	s.mu.Unlock()

	return s.resample(ctx)
}

func (s *Session) resample(ctx context.Context) error {
	s.mu.Lock()
	version := s.version
	req := api.SampleRequest{Source: s.source, Height: s.height, Width: s.width}
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"op": "sample", "version": version})
	sample, err := s.svc.Sample(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.WithError(err).Warn("sample request failed")
		return fmt.Errorf("sample: %w", err)
	}
	if s.version != version {
		log.WithField("current", s.version).Debug("discarding stale sample")
		return ErrStale
	}
	s.sample = sample
	return nil
}

// Sample returns a copy of the latest sample, or nil if there is none.
func (s *Session) Sample() *pixel.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sample == nil {
		return nil
	}
	return s.sample.Clone()
}

// PickSampleColor adds the color of a sample cell to the palette.
func (s *Session) PickSampleColor(row, col int) (pixel.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sample == nil {
		return pixel.Color{}, fmt.Errorf("%w: no sample picture", ErrPhase)
	}
	if !s.sample.Contains(row, col) {
		return pixel.Color{}, fmt.Errorf("%w: (%d,%d)", ErrNoCell, row, col)
	}
	c := s.sample.At(row, col)
	s.palette.AddOrToggleRemove(c)
	return c, nil
}

// StartDrawing leaves the sizing phase. It fires once.
//
// Without a sample the drawing starts blank at the current dimensions. With
// a sample, the service converts it to the palette and the result becomes
// the drawing. If the conversion fails the sample is quantized locally
// instead and the service error is returned.
func (s *Session) StartDrawing(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseSizing {
		s.mu.Unlock()
		return fmt.Errorf("%w: drawing already started", ErrPhase)
	}
	s.phase = PhaseDrawing
	s.version++
	version := s.version

	if s.sample == nil {
		grid, err := pixel.NewGrid(s.height, s.width)
		if err == nil {
			s.grid = grid
		}
		s.mu.Unlock()
		return err
	}
	sample := s.sample.Clone()
	palette := s.palette.Colors()
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"op": "convert", "version": version})
	converted, err := s.svc.Convert(ctx, sample, palette)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		log.WithField("current", s.version).Debug("discarding stale conversion")
		return ErrStale
	}
	if err != nil {
		log.WithError(err).Warn("convert request failed, quantizing locally")
		s.grid = sample.Quantize(palette)
		s.height, s.width = s.grid.Height(), s.grid.Width()
		return fmt.Errorf("convert: %w", err)
	}
	s.grid = converted
	s.height, s.width = converted.Height(), converted.Width()
	return nil
}

// === Drawing ===

// Resize replaces the drawing with a blank height × width grid. The previous
// contents are discarded.
func (s *Session) Resize(height, width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDrawing {
		return fmt.Errorf("%w: nothing to resize", ErrPhase)
	}
	grid, err := pixel.NewGrid(height, width)
	if err != nil {
		return err
	}
	s.grid = grid
	s.height, s.width = height, width
	s.drag = false
	s.version++
	return nil
}

// PointerDown paints a cell with the active color and starts a drag.
func (s *Session) PointerDown(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCellLocked(row, col); err != nil {
		return err
	}
	s.grid.Paint(row, col, s.palette.Active())
	s.drag = true
	return nil
}

// PointerOver paints a cell the pointer enters, but only while a drag is
// active. It reports whether the cell was painted.
func (s *Session) PointerOver(row, col int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCellLocked(row, col); err != nil {
		return false, err
	}
	if !s.drag {
		return false, nil
	}
	s.grid.Paint(row, col, s.palette.Active())
	return true, nil
}

// PointerUp ends the drag. The pointer may be anywhere, not only over the
// grid.
func (s *Session) PointerUp() {
	s.mu.Lock()
	s.drag = false
	s.mu.Unlock()
}

// Dragging reports whether a drag is active.
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag
}

// DoubleClick resets a cell to white, whether or not a drag is active.
func (s *Session) DoubleClick(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCellLocked(row, col); err != nil {
		return err
	}
	s.grid.Clear(row, col)
	return nil
}

// Grid returns a copy of the drawing, or nil before one exists.
func (s *Session) Grid() *pixel.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid == nil {
		return nil
	}
	return s.grid.Clone()
}

func (s *Session) checkCellLocked(row, col int) error {
	if s.grid == nil {
		return fmt.Errorf("%w: no drawing yet", ErrPhase)
	}
	if !s.grid.Contains(row, col) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrNoCell, row, col, s.grid.Height(), s.grid.Width())
	}
	return nil
}

// === Palette ===

// AddColor adds c to the palette unless remove mode is on.
func (s *Session) AddColor(c pixel.Color) {
	s.mu.Lock()
	s.palette.AddOrToggleRemove(c)
	s.mu.Unlock()
}

// ClickSwatch selects c, or deletes it in remove mode.
func (s *Session) ClickSwatch(c pixel.Color) {
	s.mu.Lock()
	s.palette.SelectOrDelete(c)
	s.mu.Unlock()
}

// ToggleRemoveMode flips remove mode and returns the new value.
func (s *Session) ToggleRemoveMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette.ToggleRemoveMode()
}

// PickColor makes c the active color without adding it to the palette.
func (s *Session) PickColor(c pixel.Color) {
	s.mu.Lock()
	s.palette.SetActive(c)
	s.mu.Unlock()
}

// NearestPaletteColor returns the palette color closest to c.
func (s *Session) NearestPaletteColor(c pixel.Color) pixel.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette.Nearest(c)
}

// === Options ===

// AddTag adds a tag with all whitespace removed. Empty and duplicate tags
// are ignored. It returns the cleaned tag and whether it was added.
func (s *Session) AddTag(tag string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTagLocked(tag)
}

func (s *Session) addTagLocked(tag string) (string, bool) {
	clean := strings.Join(strings.Fields(tag), "")
	if clean == "" {
		return "", false
	}
	for _, t := range s.tags {
		if t == clean {
			return clean, false
		}
	}
	s.tags = append(s.tags, clean)
	return clean, true
}

// RemoveTag removes a tag and reports whether it was present.
func (s *Session) RemoveTag(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Tags returns the tags in the order they were added.
func (s *Session) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.tags...)
}

// TogglePublic flips the public flag and returns the new value.
func (s *Session) TogglePublic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.public = !s.public
	return s.public
}

// === Persistence ===

// Save stores the drawing, palette, tags and public flag.
//
// The first save creates a picture and adopts the key the service returns;
// later saves update that picture. A create answered without a key (for
// example when not logged in) leaves the session unsaved. The service
// message is returned for display.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.grid == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: nothing to save", ErrPhase)
	}
	req := api.SaveRequest{
		Image:   s.grid.Clone(),
		Key:     s.key,
		Public:  s.public,
		Tags:    append([]string{}, s.tags...),
		Palette: s.palette.Colors(),
	}
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"op": "save", "key": req.Key})

	var (
		resp *api.SaveResponse
		err  error
	)
	if req.Key == "" {
		resp, err = s.svc.CreatePicture(ctx, req)
	} else {
		resp, err = s.svc.UpdatePicture(ctx, req)
	}
	if err != nil {
		log.WithError(err).Warn("save request failed")
		return "", fmt.Errorf("save: %w", err)
	}

	if req.Key == "" && resp.Key != "" {
		s.mu.Lock()
		s.key = resp.Key
		s.mu.Unlock()
		log.WithField("key", resp.Key).Info("picture created")
	}
	return resp.Message, nil
}

// Delete deletes the saved picture. On success the session forgets the key,
// so the next save creates a new picture.
func (s *Session) Delete(ctx context.Context) (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	key := s.Key()
	if key == "" {
		return "", ErrNoKey
	}

	log := s.log.WithFields(logrus.Fields{"op": "delete", "key": key})
	msg, err := s.svc.Delete(ctx, key)
	if err != nil {
		log.WithError(err).Warn("delete request failed")
		return "", fmt.Errorf("delete: %w", err)
	}

	s.mu.Lock()
	if s.key == key {
		s.key = ""
	}
	s.mu.Unlock()
	return msg, nil
}

// Download requests an export render of the saved picture. req.Key is
// filled in from the session.
func (s *Session) Download(ctx context.Context, req api.DownloadRequest) (string, error) {
	key := s.Key()
	if key == "" {
		return "", ErrNoKey
	}
	req.Key = key

	source, err := s.svc.Download(ctx, req)
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": "download", "key": key}).WithError(err).Warn("download request failed")
		return "", fmt.Errorf("download: %w", err)
	}
	return source, nil
}

// === State ===

// State is a read-only snapshot of a session.
type State struct {
	Phase      string        `json:"phase"`
	Height     int           `json:"height"`
	Width      int           `json:"width"`
	Key        api.Key       `json:"key,omitempty"`
	Public     bool          `json:"public"`
	Tags       []string      `json:"tags"`
	Palette    []pixel.Color `json:"palette"`
	Active     pixel.Color   `json:"active"`
	RemoveMode bool          `json:"remove_mode"`
	Dragging   bool          `json:"dragging"`
	Source     *pixel.Source `json:"source,omitempty"`
	HasSample  bool          `json:"has_sample"`
	HasGrid    bool          `json:"has_grid"`
	Version    uint64        `json:"version"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Phase:      s.phase.String(),
		Height:     s.height,
		Width:      s.width,
		Key:        s.key,
		Public:     s.public,
		Tags:       append([]string{}, s.tags...),
		Palette:    s.palette.Colors(),
		Active:     s.palette.Active(),
		RemoveMode: s.palette.RemoveMode(),
		Dragging:   s.drag,
		Source:     s.source,
		HasSample:  s.sample != nil,
		HasGrid:    s.grid != nil,
		Version:    s.version,
	}
}
