// File: weburl/url.go
// Author: momentics <momentics@gmail.com>
//
// Scheme/userinfo/host/port/path/query/fragment URL parsing matching the
// bit-exact contract described in spec.md section 3/4.1: unknown scheme
// is invalid, host is the maximal run up to ':' or a path/query/fragment
// delimiter, and a password containing '@' is tolerated by searching for
// the last '@' before the authority ends.

package weburl

import (
	"strconv"
	"strings"
)

// Scheme enumerates the schemes this module understands.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeFile
	SchemeHTTP
	SchemeHTTPS
	SchemeFTP
	SchemeNTP
	SchemeWS
	SchemeWSS
)

var schemeNames = map[string]Scheme{
	"file":  SchemeFile,
	"http":  SchemeHTTP,
	"https": SchemeHTTPS,
	"ftp":   SchemeFTP,
	"ntp":   SchemeNTP,
	"ws":    SchemeWS,
	"wss":   SchemeWSS,
}

func (s Scheme) String() string {
	for name, v := range schemeNames {
		if v == s {
			return name
		}
	}
	return "unknown"
}

// DefaultPort returns the well-known port for the scheme, 0 if none.
func DefaultPort(s Scheme) uint16 {
	switch s {
	case SchemeHTTP, SchemeWS:
		return 80
	case SchemeHTTPS, SchemeWSS:
		return 443
	case SchemeFTP:
		return 21
	case SchemeNTP:
		return 123
	default:
		return 0
	}
}

// Optional carries a value plus whether it was actually set, matching the
// source's OptionalType<T> semantics: absence is distinct from a zero value.
type Optional[T any] struct {
	Value T
	Set   bool
}

func some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// URL is the parsed representation of a scheme://... string.
type URL struct {
	scheme   Scheme
	User     Optional[string]
	Password Optional[string]
	Host     Optional[string]
	Port     Optional[uint16]
	Path     Optional[string]
	Query    Optional[string]
	Fragment Optional[string]
}

// Scheme returns the parsed scheme, SchemeUnknown if parsing failed or the
// scheme text was not recognized.
func (u *URL) Scheme() Scheme { return u.scheme }

// IsValid reports whether the URL carries a recognized scheme.
func (u *URL) IsValid() bool { return u.scheme != SchemeUnknown }

// EffectivePort returns the explicit port, or the scheme default if unset.
func (u *URL) EffectivePort() uint16 {
	if u.Port.Set {
		return u.Port.Value
	}
	return DefaultPort(u.scheme)
}

// Parse splits raw into a URL per the rules in spec.md section 4.1.
func Parse(raw string) *URL {
	out := &URL{}

	schemeEnd := strings.Index(raw, "://")
	if schemeEnd < 0 {
		return out
	}
	schemeText := strings.ToLower(raw[:schemeEnd])
	scheme, known := schemeNames[schemeText]
	if !known {
		return out
	}
	out.scheme = scheme

	rest := raw[schemeEnd+3:]

	// Authority ends at the first path/query/fragment delimiter.
	authorityEnd := strings.IndexAny(rest, "/?#")
	var authority, remainder string
	if authorityEnd < 0 {
		authority = rest
	} else {
		authority = rest[:authorityEnd]
		remainder = rest[authorityEnd:]
	}

	hostport := authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		userinfo := authority[:at]
		hostport = authority[at+1:]
		if colon := strings.IndexByte(userinfo, ':'); colon >= 0 {
			out.User = some(userinfo[:colon])
			out.Password = some(userinfo[colon+1:])
		} else if userinfo != "" {
			out.User = some(userinfo)
		}
	}

	if colon := strings.IndexByte(hostport, ':'); colon >= 0 {
		out.Host = some(hostport[:colon])
		if port, err := strconv.ParseUint(hostport[colon+1:], 10, 16); err == nil {
			out.Port = some(uint16(port))
		}
	} else if hostport != "" {
		out.Host = some(hostport)
	}

	if remainder == "" {
		return out
	}

	path := remainder
	if hashIdx := strings.IndexByte(path, '#'); hashIdx >= 0 {
		out.Fragment = some(path[hashIdx+1:])
		path = path[:hashIdx]
	}
	if qIdx := strings.IndexByte(path, '?'); qIdx >= 0 {
		out.Query = some(path[qIdx+1:])
		path = path[:qIdx]
	}
	if path != "" {
		out.Path = some(strings.TrimPrefix(path, "/"))
	}

	return out
}
