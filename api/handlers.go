package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/prasetyowira/qrstudio/api/middleware"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/studio"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// SessionProvider resolves the controller of a session
type SessionProvider interface {
	Controller(ctx context.Context, id string) *studio.Controller
}

// Handler contains service dependencies for API handlers
type Handler struct {
	sessions SessionProvider
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// formEdit is a form submission numbered by the page. Revision 0 means the
// client does not number its edits.
type formEdit struct {
	studio.Form
	Revision uint64 `json:"revision"`
}

// NewHandler creates a new API handler
func NewHandler(sessions SessionProvider) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

func (h *Handler) controller(r *http.Request) *studio.Controller {
	return h.sessions.Controller(r.Context(), middleware.SessionID(r.Context()))
}

// Page serves the single-page UI
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	appLogger.CtxDebug(r.Context(), "Serving page", appLogger.LoggerInfo{
		ContextFunction: constant.CtxPage,
	})

	w.Header().Set(constant.HeaderContentType, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, pageHTML)
}

// GetState returns the session's current state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.controller(r).State(), http.StatusOK)
}

// UpdateForm records form edits
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var edit formEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		appLogger.CtxWarn(ctx, "Error decoding form", appLogger.LoggerInfo{
			ContextFunction: constant.CtxUpdateForm,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	ctrl := h.controller(r)
	ctrl.UpdateFormRevision(ctx, edit.Form, edit.Revision)
	WriteJSON(w, ctrl.State(), http.StatusOK)
}

// Generate encodes the current form, optionally replacing it with the request
// body first, and waits for the image.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl := h.controller(r)

	var edit formEdit
	switch err := json.NewDecoder(r.Body).Decode(&edit); {
	case err == nil:
		ctrl.UpdateFormRevision(ctx, edit.Form, edit.Revision)
	case errors.Is(err, io.EOF):
		// no body: generate from the stored form
	default:
		appLogger.CtxWarn(ctx, "Error decoding form", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	task, err := ctrl.Generate(ctx)
	if errors.Is(err, studio.ErrEmptyText) {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serviceError(ctx, constant.CtxGenerate, err)
		WriteJSONError(w, constant.MsgGenerateError, http.StatusInternalServerError)
		return
	}

	if _, err := task.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			// client went away; the generation still lands in the session
			return
		}
		h.serviceError(ctx, constant.CtxGenerate, err)
		WriteJSONError(w, constant.MsgGenerateError, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, ctrl.State(), http.StatusOK)
}

// Download sends the last generated image as a file
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	download, err := h.controller(r).Download(ctx)
	if errors.Is(err, studio.ErrNoResult) {
		WriteJSONError(w, "Nothing to download yet", http.StatusConflict)
		return
	}
	if err != nil {
		h.serviceError(ctx, constant.CtxDownload, err)
		WriteJSONError(w, "Failed to prepare download", http.StatusInternalServerError)
		return
	}

	appLogger.CtxInfo(ctx, "Sending download", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDownload,
		Data: map[string]interface{}{
			constant.DataFilename: download.Filename,
			constant.DataBytes:    len(download.Data),
		},
	})

	w.Header().Set(constant.HeaderContentType, download.ContentType)
	w.Header().Set(constant.HeaderContentDisposition, `attachment; filename="`+download.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(download.Data)
}

// Clear resets the session's studio
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	ctrl.Clear(r.Context())
	WriteJSON(w, ctrl.State(), http.StatusOK)
}

// Healthcheck reports liveness
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	appLogger.CtxDebug(r.Context(), constant.MsgHealthcheckRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxRouter,
	})

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(constant.MsgHealthy))
}

func (h *Handler) serviceError(ctx context.Context, function string, err error) {
	appLogger.CtxError(ctx, "Studio operation failed", appLogger.LoggerInfo{
		ContextFunction: function,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeAPIServiceError,
			Message: err.Error(),
			Type:    constant.ErrTypeAPI,
		},
		Data: map[string]interface{}{
			constant.DataSessionID: middleware.SessionID(ctx),
		},
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set(constant.HeaderContentType, "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}
