package config

import "strings"

// NormalizeBasePath returns base with a leading slash and no trailing slash.
// The empty string and "/" both normalize to "".
func NormalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimRight(base, "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}

// AppPath prefixes path with the configured base path.
func (c *Config) AppPath(path string) string {
	return JoinPath(c.BasePath, path)
}

// JoinPath joins a normalized base path and an application path.
func JoinPath(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// CookiePath is the Path attribute for session cookies.
func (c *Config) CookiePath() string {
	if c.BasePath == "" {
		return "/"
	}
	return c.BasePath
}
