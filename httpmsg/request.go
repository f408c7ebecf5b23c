// File: httpmsg/request.go
// Author: momentics <momentics@gmail.com>

package httpmsg

// Verb enumerates the HTTP methods this module recognizes, including the
// SSDP-ish M-SEARCH/NOTIFY verbs spec.md names as following unchanged HTTP
// framing.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbGET
	VerbHEAD
	VerbPOST
	VerbPUT
	VerbDELETE
	VerbOPTIONS
	VerbTRACE
	VerbCONNECT
	VerbPATCH
	VerbMSEARCH
	VerbNOTIFY
)

var verbNames = map[Verb]string{
	VerbGET:     "GET",
	VerbHEAD:    "HEAD",
	VerbPOST:    "POST",
	VerbPUT:     "PUT",
	VerbDELETE:  "DELETE",
	VerbOPTIONS: "OPTIONS",
	VerbTRACE:   "TRACE",
	VerbCONNECT: "CONNECT",
	VerbPATCH:   "PATCH",
	VerbMSEARCH: "M-SEARCH",
	VerbNOTIFY:  "NOTIFY",
}

var verbByName = func() map[string]Verb {
	m := make(map[string]Verb, len(verbNames))
	for v, n := range verbNames {
		m[n] = v
	}
	return m
}()

func (v Verb) String() string {
	if n, ok := verbNames[v]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseVerb maps wire text to a Verb, VerbUnknown if unrecognized.
func ParseVerb(text string) Verb {
	if v, ok := verbByName[text]; ok {
		return v
	}
	return VerbUnknown
}

// AuthScheme enumerates the Authorization header schemes this module parses.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBearer
	AuthBasic
)

// Authorization carries a parsed Authorization header.
type Authorization struct {
	Scheme AuthScheme
	Token  string
}

// ContentHMAC carries a parsed Content-HMAC header: an algorithm name and
// a base64 digest, signing the body per spec.md section 3/4.2's
// SignedBody contract.
type ContentHMAC struct {
	Algorithm string
	Digest    string
}

// Request is an HTTP request: start line plus the header set spec.md
// section 3 lists for requests.
type Request struct {
	Message

	Verb     Verb
	Path     string
	Query    Optional[string]
	Fragment Optional[string]

	Host           Optional[string]
	Origin         Optional[string]
	Accept         Optional[string]
	AcceptEncoding Optional[string] // only "gzip" is meaningful per spec.md
	UserAgent      Optional[string]
	Range          Optional[string]
	Authorization  Optional[Authorization]
	ContentHMAC    Optional[ContentHMAC]
}

// NewRequest returns a defaulted Request for verb/path.
func NewRequest(verb Verb, path string) *Request {
	r := &Request{Message: NewMessage(), Verb: verb, Path: path}
	return r
}
