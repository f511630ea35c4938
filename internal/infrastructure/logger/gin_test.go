package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, level zapcore.Level, register func(*gin.Engine), method, target string) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(level)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	register(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w, recorded
}

func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	logs := recorded.All()
	for i := range logs {
		if logs[i].Message == "HTTP Request" {
			return &logs[i]
		}
	}
	t.Fatal("no HTTP Request entry recorded")
	return nil
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs a successful request at info", func(t *testing.T) {
		w, recorded := serveLogged(t, zapcore.InfoLevel, func(r *gin.Engine) {
			r.GET("/api/v1/campaigns", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"data": []string{}})
			})
		}, "GET", "/api/v1/campaigns")

		assert.Equal(t, http.StatusOK, w.Code)
		entry := findRequestLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := make(map[string]zapcore.Field)
		for _, f := range entry.Context {
			fields[f.Key] = f
		}
		for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
			assert.Contains(t, fields, key)
		}
	})

	t.Run("escalates a 4xx to warn", func(t *testing.T) {
		w, recorded := serveLogged(t, zapcore.WarnLevel, func(r *gin.Engine) {
			r.GET("/api/v1/lots/bad", func(c *gin.Context) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			})
		}, "GET", "/api/v1/lots/bad")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, zapcore.WarnLevel, findRequestLog(t, recorded).Level)
	})

	t.Run("escalates a 5xx to error", func(t *testing.T) {
		w, recorded := serveLogged(t, zapcore.ErrorLevel, func(r *gin.Engine) {
			r.GET("/api/v1/boom", func(c *gin.Context) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
			})
		}, "GET", "/api/v1/boom")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, zapcore.ErrorLevel, findRequestLog(t, recorded).Level)
	})

	t.Run("carries the request id set upstream", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-00042")
			c.Next()
		})
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/transit-orders", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": []string{}})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/transit-orders", nil)
		router.ServeHTTP(w, req)

		entry := findRequestLog(t, recorded)
		var got string
		for _, f := range entry.Context {
			if f.Key == "request_id" {
				got = f.String
			}
		}
		assert.Equal(t, "req-00042", got)
	})

	t.Run("includes the raw query when present", func(t *testing.T) {
		_, recorded := serveLogged(t, zapcore.InfoLevel, func(r *gin.Engine) {
			r.GET("/api/v1/containers", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"data": []string{}})
			})
		}, "GET", "/api/v1/containers?status=loading&page=1")

		entry := findRequestLog(t, recorded)
		var query string
		for _, f := range entry.Context {
			if f.Key == "query" {
				query = f.String
			}
		}
		assert.Contains(t, query, "status=loading")
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("lot split went sideways")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)
		var got *zap.Logger

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/lots", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/lots", nil)
		router.ServeHTTP(w, req)

		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		var got *zap.Logger

		router := gin.New()
		router.GET("/bare", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/bare", nil)
		router.ServeHTTP(w, req)

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("noop") })
	})
}
