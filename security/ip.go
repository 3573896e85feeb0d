package security

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the real client IP address from the request.
// Supports X-Forwarded-For and X-Real-IP headers when behind a proxy.
//
// Only enable trustProxy when behind a trusted reverse proxy;
// trustedProxyCount specifies how many proxies to trust from the right of
// the X-Forwarded-For chain, which prevents spoofing in multi-proxy setups.
func GetClientIP(r *http.Request, trustProxy bool, trustedProxyCount int) string {
	if trustProxy {
		if ip := extractIPFromXFF(r.Header.Get("X-Forwarded-For"), trustedProxyCount); ip != "" {
			return ip
		}
		if ip := extractIPFromXRealIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return extractIPFromRemoteAddr(r.RemoteAddr)
}

// extractIPFromXFF parses the X-Forwarded-For header. The rightmost IPs are
// the trusted proxies we control; the client IP sits immediately left of
// them.
func extractIPFromXFF(xff string, trustedProxyCount int) string {
	if xff == "" {
		return ""
	}

	ips := strings.Split(xff, ",")
	clientIP := strings.TrimSpace(ips[clientIPIndex(len(ips), trustedProxyCount)])

	if net.ParseIP(clientIP) != nil {
		return clientIP
	}
	return ""
}

// clientIPIndex determines the index of the client IP in the X-Forwarded-For
// list. A trustedProxyCount of 0 assumes one trusted proxy.
func clientIPIndex(numIPs, trustedProxyCount int) int {
	proxyCount := trustedProxyCount
	if proxyCount == 0 {
		proxyCount = 1
	}

	idx := numIPs - proxyCount - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// extractIPFromXRealIP parses the X-Real-IP header (set by some proxies)
func extractIPFromXRealIP(xri string) string {
	if xri == "" {
		return ""
	}
	if net.ParseIP(xri) != nil {
		return xri
	}
	return ""
}

// extractIPFromRemoteAddr extracts the IP from RemoteAddr for direct
// connections
func extractIPFromRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
