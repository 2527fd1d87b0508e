package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	CSPDirectives         []string
	// NoStore marks every response uncacheable; responses carry patient data
	NoStore bool
}

// DefaultSecurityConfig returns default security configuration for a JSON API
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
		NoStore: true,
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	hsts := ""
	if config.HSTS {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	csp := strings.Join(config.CSPDirectives, "; ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		h.Set("X-Frame-Options", config.FrameOptions)
		h.Set("X-Content-Type-Options", config.ContentTypeOptions)
		h.Set("Referrer-Policy", config.ReferrerPolicy)
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		if config.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
		}
		c.Next()
	}
}

// BodyLimit caps request bodies at maxBytes. Reads past the cap fail
// with *http.MaxBytesError, which ErrorHandler reports as a bad request.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Status:  "error",
				Code:    http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
