package server

import (
	"net"
	"net/http"
	"strings"
)

// ------------------------------------------------------------
// IP Utility Functions
//
// trigger 서버는 ALB 뒤에 배치될 수 있으므로 RemoteAddr 만으로는
// 호출자를 알 수 없다. 요청 로그에 남길 호출자 IP 를 헤더 기반으로 고른다.
// ------------------------------------------------------------

// isPublicIP:
//   - private / loopback / link-local 이 아니면 true
func isPublicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	// IPv4 private ranges: 10/8, 172.16/12, 192.168/16
	if ip.IsPrivate() {
		return false
	}
	// Loopback, link-local 등 제외
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}

// safeParseIP:
//   - 공백/빈 값 대응
//   - 잘못된 값이 들어오면 nil 반환
func safeParseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return net.ParseIP(s)
}

// clientIP:
//
// 우선순위:
//  1. X-Forwarded-For → 첫 번째 public IP
//  2. X-Real-IP
//  3. RemoteAddr
//
// trigger 는 내부망(cron, EventBridge, 운영자)에서 호출되는 경우가 많으므로
// 2, 3 단계에서는 private IP 도 그대로 돌려준다.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// 예: "203.0.113.1, 10.0.1.24"
		for _, part := range strings.Split(xff, ",") {
			if ip := safeParseIP(part); isPublicIP(ip) {
				return ip.String()
			}
		}
	}

	if ip := safeParseIP(r.Header.Get("X-Real-IP")); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := safeParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}
