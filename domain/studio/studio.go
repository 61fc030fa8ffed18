package studio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

var (
	ErrEmptyText      = errors.New(constant.ErrEmptyText)
	ErrNoResult       = errors.New(constant.ErrNoResult)
	ErrInvalidResult  = errors.New(constant.ErrInvalidImage)
	ErrGenerateFailed = errors.New(constant.MsgGenerateError)
)

const pngDataURIPrefix = "data:image/png;base64,"

// PreviewState is the state of the preview area.
type PreviewState string

const (
	PreviewIdle       PreviewState = "idle"
	PreviewGenerating PreviewState = "generating"
	PreviewShown      PreviewState = "shown"
	PreviewFailed     PreviewState = "failed"
)

// Encoder turns validated options into a PNG data URI.
type Encoder interface {
	Encode(ctx context.Context, opts Options) (string, error)
}

// PreferenceStore is a persistent key-value store partitioned by scope.
type PreferenceStore interface {
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
}

// Result is the most recent successful generation.
type Result struct {
	DataURI string `json:"data_uri"`
	Size    int    `json:"size"`
	Text    string `json:"text"`
}

// Download is an image ready to be saved to a file.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// State is a point-in-time view of a controller.
type State struct {
	Form            Form         `json:"form"`
	Preview         PreviewState `json:"preview"`
	Message         string       `json:"message,omitempty"`
	Meta            string       `json:"meta"`
	Image           *Result      `json:"image,omitempty"`
	DownloadEnabled bool         `json:"download_enabled"`
	Revision        uint64       `json:"revision"`
}

// Controller owns the form, the preview and the single result slot of one
// user session.
type Controller struct {
	encoder    Encoder
	store      PreferenceStore
	scope      string
	storageKey string

	// edits serializes form edits so they reach the store in the order
	// they were applied
	edits sync.Mutex

	mu       sync.Mutex
	form     Form
	revision uint64
	preview  PreviewState
	message  string
	meta     string
	result   *Result
}

// NewController creates a controller in its reset state. store may be nil,
// in which case text is not persisted.
func NewController(encoder Encoder, store PreferenceStore, scope, storageKey string) *Controller {
	c := &Controller{
		encoder:    encoder,
		store:      store,
		scope:      scope,
		storageKey: storageKey,
	}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.form = DefaultForm()
	c.preview = PreviewIdle
	c.message = constant.MsgPlaceholder
	c.meta = MetaText("")
	c.result = nil
}

// Restore loads the persisted text into the form. Storage errors are ignored.
func (c *Controller) Restore(ctx context.Context) {
	if c.store == nil {
		return
	}

	saved, found, err := c.store.Get(ctx, c.scope, c.storageKey)
	if err != nil {
		logger.CtxDebug(ctx, "Ignoring preference read failure", logger.LoggerInfo{
			ContextFunction: constant.CtxRestore,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRestoreText,
				Message: err.Error(),
				Type:    constant.ErrTypePersistence,
			},
			Data: map[string]interface{}{
				constant.DataScope: c.scope,
			},
		})
		return
	}
	if !found || saved == "" {
		return
	}

	c.mu.Lock()
	c.form.Text = saved
	c.mu.Unlock()

	logger.CtxDebug(ctx, "Restored last text", logger.LoggerInfo{
		ContextFunction: constant.CtxRestore,
		Data: map[string]interface{}{
			constant.DataScope:      c.scope,
			constant.DataTextLength: len(saved),
		},
	})
}

// SetText records a text edit and persists it.
func (c *Controller) SetText(ctx context.Context, text string) {
	c.edits.Lock()
	defer c.edits.Unlock()

	c.mu.Lock()
	c.form.Text = text
	c.mu.Unlock()

	c.persist(ctx, text)
}

// UpdateForm replaces the form. The text is persisted when it changed.
func (c *Controller) UpdateForm(ctx context.Context, form Form) {
	c.applyForm(ctx, form, 0)
}

// UpdateFormRevision is UpdateForm for clients that number their edits. An
// edit whose revision is not above the last applied one is dropped and false
// is returned. Revision 0 is always applied.
func (c *Controller) UpdateFormRevision(ctx context.Context, form Form, revision uint64) bool {
	return c.applyForm(ctx, form, revision)
}

func (c *Controller) applyForm(ctx context.Context, form Form, revision uint64) bool {
	c.edits.Lock()
	defer c.edits.Unlock()

	c.mu.Lock()
	if revision != 0 && revision <= c.revision {
		last := c.revision
		c.mu.Unlock()

		logger.CtxDebug(ctx, "Dropping stale form edit", logger.LoggerInfo{
			ContextFunction: constant.CtxUpdateForm,
			Data: map[string]interface{}{
				constant.DataScope:        c.scope,
				constant.DataRevision:     revision,
				constant.DataLastRevision: last,
			},
		})
		return false
	}
	if revision != 0 {
		c.revision = revision
	}
	changed := c.form.Text != form.Text
	c.form = form
	c.mu.Unlock()

	logger.CtxDebug(ctx, "Form updated", logger.LoggerInfo{
		ContextFunction: constant.CtxUpdateForm,
		Data: map[string]interface{}{
			constant.DataScope:      c.scope,
			constant.DataTextLength: len(form.Text),
			constant.DataRevision:   revision,
		},
	})

	if changed {
		c.persist(ctx, form.Text)
	}
	return true
}

func (c *Controller) persist(ctx context.Context, text string) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, c.scope, c.storageKey, text); err != nil {
		logger.CtxDebug(ctx, "Ignoring preference write failure", logger.LoggerInfo{
			ContextFunction: constant.CtxUpdateForm,
			Error: &logger.CustomError{
				Code:    constant.ErrCodePersistText,
				Message: err.Error(),
				Type:    constant.ErrTypePersistence,
			},
			Data: map[string]interface{}{
				constant.DataScope: c.scope,
			},
		})
	}
}

// Generate validates the form and starts encoding in the background. It
// returns ErrEmptyText without touching any state when there is nothing to
// encode. Concurrent generations are not coordinated: the last one to finish
// owns the result slot.
func (c *Controller) Generate(ctx context.Context) (*Task, error) {
	c.mu.Lock()
	opts, err := c.form.Options()
	if err != nil {
		c.mu.Unlock()
		logger.CtxWarn(ctx, "Nothing to encode", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeEmptyText,
				Message: err.Error(),
				Type:    constant.ErrTypeValidation,
			},
		})
		return nil, err
	}
	c.preview = PreviewGenerating
	c.message = constant.MsgGenerating
	c.mu.Unlock()

	logger.CtxDebug(ctx, "Generating QR code", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataTextLength: len(opts.Text),
			constant.DataSize:       opts.Size,
			constant.DataForeground: opts.Foreground,
			constant.DataBackground: opts.Background,
			constant.DataLevel:      opts.Level,
		},
	})

	task := newTask()
	go c.run(context.WithoutCancel(ctx), opts, task)
	return task, nil
}

func (c *Controller) run(ctx context.Context, opts Options, task *Task) {
	dataURI, err := c.encoder.Encode(ctx, opts)

	c.mu.Lock()
	var result *Result
	if err != nil {
		c.preview = PreviewFailed
		c.message = constant.MsgGenerateError
		c.result = nil
		err = fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	} else {
		result = &Result{DataURI: dataURI, Size: opts.Size, Text: opts.Text}
		c.preview = PreviewShown
		c.message = ""
		c.meta = MetaText(opts.Text)
		c.result = result
	}
	c.mu.Unlock()

	if err != nil {
		logger.CtxError(ctx, "QR generation failed", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeEncodeFailure,
				Message: err.Error(),
				Type:    constant.ErrTypeEncoder,
			},
			Data: map[string]interface{}{
				constant.DataScope: c.scope,
			},
		})
	} else {
		logger.CtxInfo(ctx, "QR code generated", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Data: map[string]interface{}{
				constant.DataScope: c.scope,
				constant.DataSize:  opts.Size,
				constant.DataBytes: len(dataURI),
			},
		})
	}

	task.finish(result, err)
}

// Download returns the current result as PNG bytes named after the form text.
func (c *Controller) Download(ctx context.Context) (*Download, error) {
	c.mu.Lock()
	result := c.result
	text := c.form.Text
	c.mu.Unlock()

	if result == nil {
		logger.CtxWarn(ctx, "Download requested before generation", logger.LoggerInfo{
			ContextFunction: constant.CtxDownload,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeNoResult,
				Message: constant.ErrNoResult,
				Type:    constant.ErrTypeDownload,
			},
		})
		return nil, ErrNoResult
	}

	data, err := decodePNGDataURI(result.DataURI)
	if err != nil {
		logger.CtxError(ctx, "Stored image could not be decoded", logger.LoggerInfo{
			ContextFunction: constant.CtxDownload,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeInvalidResult,
				Message: err.Error(),
				Type:    constant.ErrTypeDownload,
			},
		})
		return nil, err
	}

	return &Download{
		Filename:    DownloadFilename(text),
		ContentType: "image/png",
		Data:        data,
	}, nil
}

func decodePNGDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, pngDataURIPrefix)
	if !ok {
		return nil, ErrInvalidResult
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	return data, nil
}

// Clear resets the form, the preview and the result slot. The persisted text
// is left alone.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	logger.CtxDebug(ctx, "Studio cleared", logger.LoggerInfo{
		ContextFunction: constant.CtxClear,
		Data: map[string]interface{}{
			constant.DataScope: c.scope,
		},
	})
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Form:            c.form,
		Preview:         c.preview,
		Message:         c.message,
		Meta:            c.meta,
		DownloadEnabled: c.result != nil,
		Revision:        c.revision,
	}
	if c.preview == PreviewShown && c.result != nil {
		image := *c.result
		state.Image = &image
	}
	return state
}

// Task tracks one background generation.
type Task struct {
	done   chan struct{}
	result *Result
	err    error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) finish(result *Result, err error) {
	t.result = result
	t.err = err
	close(t.done)
}

// Done is closed once the generation has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the generation finishes or ctx is done. Giving up on the
// wait does not stop the generation.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
