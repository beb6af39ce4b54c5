package utils

import (
	"net/url"
	"strings"
)

// IsLocalhost reports whether serverURL points at this machine.
func IsLocalhost(serverURL string) bool {
	u, err := url.Parse(serverURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// JoinURL joins a base URL and an API path without doubling slashes.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// HostOf returns the host[:port] part of serverURL for compact display.
func HostOf(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(serverURL, "http://"), "https://")
	}
	return u.Host
}
