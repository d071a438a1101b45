package monitoring

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/gin-gonic/gin"
)

// slowRequestThreshold marks requests worth a performance warning
const slowRequestThreshold = 5 * time.Second

// maxSubmissionBytes is well above a full 48-item form
const maxSubmissionBytes = 10000

// MonitoringMiddleware creates Gin middleware for request monitoring
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ip := c.ClientIP()
		userAgent := c.GetHeader("User-Agent")
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// Label by route template so ids do not explode cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(method, route, statusCode, duration)

		logger.RequestLogger(method, path, ip, userAgent, statusCode, duration)

		for _, ginErr := range c.Errors {
			if appErr := apperrors.ToAppError(ginErr.Err); appErr != nil {
				metrics.RecordError(string(appErr.Category))
			}
			logger.APIErrorLogger(ginErr.Err, method, path, ip, statusCode)
		}

		if duration > slowRequestThreshold {
			logger.PerformanceLogger("slow_request", duration.Seconds(), "seconds")
		}

		if statusCode >= http.StatusInternalServerError {
			logger.SystemLogger("server_error", fmt.Sprintf("Status %d for %s %s", statusCode, method, path))
		}
	}
}

// SecurityMonitoringMiddleware logs suspicious requests without blocking them
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		details := make(map[string]interface{})

		if containsSQLInjectionPatterns(c.Request.URL.RawQuery) {
			details["type"] = "potential_sql_injection"
			details["query"] = c.Request.URL.RawQuery
		}

		if c.Request.Method == http.MethodPost && c.Request.ContentLength > maxSubmissionBytes {
			details["type"] = "large_request_body"
			details["size_bytes"] = c.Request.ContentLength
		}

		userAgent := c.GetHeader("User-Agent")
		if containsSuspiciousUserAgent(userAgent) {
			details["type"] = "suspicious_user_agent"
		}

		if len(details) > 0 {
			logger.SecurityLogger("suspicious_activity_detected", c.ClientIP(), userAgent, details)
		}

		c.Next()
	}
}

func containsSQLInjectionPatterns(query string) bool {
	patterns := []string{
		"union select",
		"union all",
		"select * from",
		"drop table",
		"delete from",
		"';--",
		"/*",
		" xp_",
	}

	q := strings.ToLower(query)
	for _, pattern := range patterns {
		if strings.Contains(q, pattern) {
			return true
		}
	}
	return false
}

func containsSuspiciousUserAgent(userAgent string) bool {
	suspiciousAgents := []string{
		"sqlmap",
		"nmap",
		"masscan",
		"dirbuster",
		"gobuster",
		"nikto",
		"acunetix",
	}

	ua := strings.ToLower(userAgent)
	for _, agent := range suspiciousAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}
