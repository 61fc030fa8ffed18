package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prasetyowira/qrstudio/constant"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// RequestLogger is middleware that adds request ID to the context and logs request/response info
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reuse chi's request ID when the RequestID middleware ran first
			requestID := middleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := appLogger.WithRequestID(r.Context(), requestID)
			w.Header().Set(constant.HeaderRequestID, requestID)

			appLogger.CtxDebug(ctx, constant.MsgRequestReceived, appLogger.LoggerInfo{
				ContextFunction: constant.CtxAPI,
				Data: map[string]interface{}{
					constant.DataMethod:     r.Method,
					constant.DataPath:       r.URL.Path,
					constant.DataRemoteAddr: r.RemoteAddr,
					constant.DataUserAgent:  r.UserAgent(),
				},
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			latency := time.Since(startTime)

			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			logFunc := appLogger.CtxInfo
			if statusCode >= 400 && statusCode < 500 {
				logFunc = appLogger.CtxWarn
			} else if statusCode >= 500 {
				logFunc = appLogger.CtxError
			}

			logFunc(ctx, constant.MsgRequestCompleted, appLogger.LoggerInfo{
				ContextFunction: constant.CtxAPI,
				Data: map[string]interface{}{
					constant.DataStatus:  statusCode,
					constant.DataLatency: latency.String(),
					constant.DataMethod:  r.Method,
					constant.DataPath:    r.URL.Path,
					constant.DataBytes:   ww.BytesWritten(),
				},
			})
		})
	}
}
