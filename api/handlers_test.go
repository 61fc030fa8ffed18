package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prasetyowira/qrstudio/api/middleware"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/studio"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSession = "session-1"

// Mock encoder for testing
type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) Encode(ctx context.Context, opts studio.Options) (string, error) {
	args := m.Called(ctx, opts)
	return args.String(0), args.Error(1)
}

// Mock preference store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	args := m.Called(ctx, scope, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, scope, key, value string) error {
	args := m.Called(ctx, scope, key, value)
	return args.Error(0)
}

func newTestHandler() (*Handler, *MockEncoder, *studio.Sessions) {
	encoder := new(MockEncoder)
	sessions := studio.NewSessions(cache.NewNamespaceLRU(8), encoder, nil, "cwz_last_qr")
	return NewHandler(sessions), encoder, sessions
}

func newRequest(method, target string, body interface{}) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), testSession))
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) studio.State {
	t.Helper()
	var state studio.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func pngURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestGetState_Initial(t *testing.T) {
	handler, _, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.GetState(w, newRequest(http.MethodGet, "/api/state", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, studio.DefaultForm(), state.Form)
	assert.Equal(t, studio.PreviewIdle, state.Preview)
	assert.Equal(t, constant.MsgPlaceholder, state.Message)
	assert.False(t, state.DownloadEnabled)
}

func TestUpdateForm_Success(t *testing.T) {
	handler, _, sessions := newTestHandler()
	form := studio.Form{Text: "abc", Size: "500", Foreground: "#111111", Background: "#eeeeee", Level: "Q"}
	w := httptest.NewRecorder()

	handler.UpdateForm(w, newRequest(http.MethodPut, "/api/form", form))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, form, decodeState(t, w).Form)
	assert.Equal(t, form, sessions.Controller(context.Background(), testSession).State().Form)
}

func TestUpdateForm_InvalidRequestBody(t *testing.T) {
	handler, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPut, "/api/form", bytes.NewBufferString(`{"text": }`))
	req = req.WithContext(middleware.WithSessionID(req.Context(), testSession))
	w := httptest.NewRecorder()

	handler.UpdateForm(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Invalid request format", resp.Error)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGenerate_Success(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	uri := pngURI("img")
	encoder.On("Encode", mock.Anything, mock.MatchedBy(func(o studio.Options) bool {
		return o.Text == "Hello World" && o.Size == 280 && o.Level == studio.LevelMedium
	})).Return(uri, nil).Once()

	form := studio.DefaultForm()
	form.Text = "Hello World"
	w := httptest.NewRecorder()

	handler.Generate(w, newRequest(http.MethodPost, "/api/generate", form))

	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, studio.PreviewShown, state.Preview)
	assert.True(t, state.DownloadEnabled)
	require.NotNil(t, state.Image)
	assert.Equal(t, uri, state.Image.DataURI)
	assert.Equal(t, 280, state.Image.Size)
	encoder.AssertExpectations(t)
}

func TestGenerate_WithoutBodyUsesStoredForm(t *testing.T) {
	handler, encoder, sessions := newTestHandler()
	sessions.Controller(context.Background(), testSession).SetText(context.Background(), "stored")
	encoder.On("Encode", mock.Anything, mock.MatchedBy(func(o studio.Options) bool {
		return o.Text == "stored"
	})).Return(pngURI("img"), nil).Once()
	w := httptest.NewRecorder()

	handler.Generate(w, newRequest(http.MethodPost, "/api/generate", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	encoder.AssertExpectations(t)
}

func TestGenerate_EmptyText(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	form := studio.DefaultForm()
	form.Text = "   "
	w := httptest.NewRecorder()

	handler.Generate(w, newRequest(http.MethodPost, "/api/generate", form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constant.ErrEmptyText, decodeError(t, w).Error)
	encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
}

func TestGenerate_EncoderFailure(t *testing.T) {
	handler, encoder, sessions := newTestHandler()
	encoder.On("Encode", mock.Anything, mock.Anything).Return("", errors.New("content too long")).Once()
	form := studio.DefaultForm()
	form.Text = "too long"
	w := httptest.NewRecorder()

	handler.Generate(w, newRequest(http.MethodPost, "/api/generate", form))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constant.MsgGenerateError, decodeError(t, w).Error)

	state := sessions.Controller(context.Background(), testSession).State()
	assert.Equal(t, studio.PreviewFailed, state.Preview)
	assert.False(t, state.DownloadEnabled)
}

func TestGenerate_InvalidRequestBody(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(`not json`))
	req = req.WithContext(middleware.WithSessionID(req.Context(), testSession))
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
}

func TestDownload_NothingGenerated(t *testing.T) {
	handler, _, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.Download(w, newRequest(http.MethodGet, "/api/download", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Nothing to download yet", decodeError(t, w).Error)
}

func TestDownload_Success(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	encoder.On("Encode", mock.Anything, mock.Anything).Return(pngURI("png-data"), nil).Once()
	form := studio.DefaultForm()
	form.Text = "Hello World"
	handler.Generate(httptest.NewRecorder(), newRequest(http.MethodPost, "/api/generate", form))

	w := httptest.NewRecorder()
	handler.Download(w, newRequest(http.MethodGet, "/api/download", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get(constant.HeaderContentType))
	assert.Equal(t, `attachment; filename="Hello_World.png"`, w.Header().Get(constant.HeaderContentDisposition))
	assert.Equal(t, []byte("png-data"), w.Body.Bytes())
}

func TestClear_ResetsState(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	encoder.On("Encode", mock.Anything, mock.Anything).Return(pngURI("png-data"), nil).Once()
	form := studio.Form{Text: "abc", Size: "900", Foreground: "#ff0000", Background: "#000000", Level: "H"}
	handler.Generate(httptest.NewRecorder(), newRequest(http.MethodPost, "/api/generate", form))

	w := httptest.NewRecorder()
	handler.Clear(w, newRequest(http.MethodPost, "/api/clear", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, studio.DefaultForm(), state.Form)
	assert.Equal(t, studio.PreviewIdle, state.Preview)
	assert.Equal(t, constant.MsgNoContent, state.Meta)
	assert.False(t, state.DownloadEnabled)

	dw := httptest.NewRecorder()
	handler.Download(dw, newRequest(http.MethodGet, "/api/download", nil))
	assert.Equal(t, http.StatusConflict, dw.Code)
}

func TestPage(t *testing.T) {
	handler, _, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.Page(w, newRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get(constant.HeaderContentType), "text/html")
	assert.Contains(t, w.Body.String(), `id="generateBtn"`)
}

func TestPage_EmptyTextAlertsBeforePreviewChanges(t *testing.T) {
	handler, _, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.Page(w, newRequest(http.MethodGet, "/", nil))

	body := w.Body.String()
	assert.Contains(t, body, "var emptyTextMessage = '"+constant.ErrEmptyText+"'")

	check := strings.Index(body, "if (!fields.text.value.trim())")
	generating := strings.Index(body, "preview: 'generating'")
	require.NotEqual(t, -1, check)
	require.NotEqual(t, -1, generating)
	assert.Less(t, check, generating)
}

func TestPage_EditsAreNumberedAndQueued(t *testing.T) {
	handler, _, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.Page(w, newRequest(http.MethodGet, "/", nil))

	body := w.Body.String()
	assert.Contains(t, body, "form.revision = ++revision;")
	assert.Contains(t, body, "enqueue('PUT', '/api/form', readForm)")
	assert.NotContains(t, body, "call('PUT'")
}

func TestSessionsAreIsolated(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := newRequest(http.MethodPut, "/api/form", studio.Form{Text: "mine"})
	handler.UpdateForm(httptest.NewRecorder(), req)

	other := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	other = other.WithContext(middleware.WithSessionID(other.Context(), "session-2"))
	w := httptest.NewRecorder()
	handler.GetState(w, other)

	assert.Equal(t, "", decodeState(t, w).Form.Text)
}

func TestUpdateForm_OlderEditDoesNotOverwriteNewer(t *testing.T) {
	encoder := new(MockEncoder)
	store := new(MockStore)
	store.On("Get", mock.Anything, testSession, "cwz_last_qr").Return("", false, nil).Once()
	store.On("Set", mock.Anything, testSession, "cwz_last_qr", "abc").Return(nil).Once()
	handler := NewHandler(studio.NewSessions(cache.NewNamespaceLRU(8), encoder, store, "cwz_last_qr"))

	newer := map[string]interface{}{"text": "abc", "size": "280", "revision": 3}
	older := map[string]interface{}{"text": "ab", "size": "280", "revision": 2}

	w := httptest.NewRecorder()
	handler.UpdateForm(w, newRequest(http.MethodPut, "/api/form", newer))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.UpdateForm(w, newRequest(http.MethodPut, "/api/form", older))

	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, "abc", state.Form.Text)
	assert.Equal(t, uint64(3), state.Revision)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Set", mock.Anything, testSession, "cwz_last_qr", "ab")
}

func TestGenerate_StaleBodyUsesNewerForm(t *testing.T) {
	handler, encoder, _ := newTestHandler()
	encoder.On("Encode", mock.Anything, mock.MatchedBy(func(o studio.Options) bool {
		return o.Text == "newer"
	})).Return(pngURI("img"), nil).Once()

	handler.UpdateForm(httptest.NewRecorder(), newRequest(http.MethodPut, "/api/form",
		map[string]interface{}{"text": "newer", "revision": 5}))

	w := httptest.NewRecorder()
	handler.Generate(w, newRequest(http.MethodPost, "/api/generate",
		map[string]interface{}{"text": "older", "revision": 4}))

	assert.Equal(t, http.StatusOK, w.Code)
	encoder.AssertExpectations(t)
}
