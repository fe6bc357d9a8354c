package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// GateConfig carries the allow-list values for the config endpoint.
type GateConfig struct {
	// Development disables the gate entirely.
	Development bool
	// AllowedIPs are the forwarded-client IPs (v4 or v6) admitted without
	// further checks.
	AllowedIPs []string
	// RefererPrefix and the client-identifier header form the browser-side
	// check; both must match.
	RefererPrefix  string
	ClientIDHeader string
	ClientIDValue  string
}

// ConfigGate protects the backend-config endpoint. A request passes when the
// forwarded client IP is allow-listed, or when it carries the expected
// Referer prefix together with the client-identifier header. Everything else
// gets a 403 with a machine-readable reason and no retry hint.
func ConfigGate(cfg GateConfig) echo.MiddlewareFunc {
	allowed := make([]net.IP, 0, len(cfg.AllowedIPs))
	for _, raw := range cfg.AllowedIPs {
		if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
			allowed = append(allowed, ip)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Development {
				return next(c)
			}
			if ipAllowed(clientIP(c.Request()), allowed) {
				return next(c)
			}
			if refererAllowed(c.Request(), cfg.RefererPrefix) && clientHeaderAllowed(c.Request(), cfg.ClientIDHeader, cfg.ClientIDValue) {
				return next(c)
			}
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Forbidden: access to configuration is restricted.",
			})
		}
	}
}

// clientIP takes the first X-Forwarded-For hop when present, falling back to
// the connection's remote address.
func clientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		return net.ParseIP(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func ipAllowed(ip net.IP, allowed []net.IP) bool {
	if ip == nil {
		return false
	}
	for _, candidate := range allowed {
		if candidate.Equal(ip) {
			return true
		}
	}
	return false
}

func refererAllowed(r *http.Request, prefix string) bool {
	return prefix != "" && strings.HasPrefix(r.Header.Get("Referer"), prefix)
}

func clientHeaderAllowed(r *http.Request, header, value string) bool {
	return header != "" && value != "" && r.Header.Get(header) == value
}
