package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prasetyowira/qrstudio/constant"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_SetsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appLogger.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	RequestLogger()(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(constant.HeaderRequestID))
}

func TestSession_IssuesCookieOnFirstVisit(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	Session(next).ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constant.SessionCookieName, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestSession_ReusesExistingCookie(t *testing.T) {
	id := uuid.New().String()
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constant.SessionCookieName, Value: id})
	w := httptest.NewRecorder()
	Session(next).ServeHTTP(w, req)

	assert.Equal(t, id, seen)
	assert.Empty(t, w.Result().Cookies())
}

func TestSession_ReplacesMalformedCookie(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constant.SessionCookieName, Value: "../../etc"})
	w := httptest.NewRecorder()
	Session(next).ServeHTTP(w, req)

	assert.NotEqual(t, "../../etc", seen)
	assert.Len(t, w.Result().Cookies(), 1)
}
