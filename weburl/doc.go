// File: weburl/doc.go
// Package weburl
// Author: momentics <momentics@gmail.com>
//
// URL parsing and the percent-encode and base64url codecs shared by the
// HTTP and WebSocket layers. Mirrors the scheme/userinfo/host/port/path
// parsing rules of the framework this module's wire contracts come from,
// not Go's net/url (different userinfo and percent-decode rules).
package weburl
