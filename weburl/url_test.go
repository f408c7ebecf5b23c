package weburl_test

import (
	"testing"

	"github.com/momentics/weblink-rpc/weburl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullAuthority(t *testing.T) {
	u := weburl.Parse("http://u:p@h:81/a?b#c")
	require.True(t, u.IsValid())
	assert.Equal(t, weburl.SchemeHTTP, u.Scheme())
	assert.Equal(t, "u", u.User.Value)
	assert.Equal(t, "p", u.Password.Value)
	assert.Equal(t, "h", u.Host.Value)
	assert.EqualValues(t, 81, u.Port.Value)
	assert.Equal(t, "a", u.Path.Value)
	assert.Equal(t, "b", u.Query.Value)
	assert.Equal(t, "c", u.Fragment.Value)
}

func TestParseUnknownScheme(t *testing.T) {
	u := weburl.Parse("gopher://example.com/")
	assert.False(t, u.IsValid())
}

func TestParsePasswordContainingAt(t *testing.T) {
	u := weburl.Parse("ws://user:p@ss@host/jsonrpc")
	require.True(t, u.IsValid())
	assert.Equal(t, "user", u.User.Value)
	assert.Equal(t, "p@ss", u.Password.Value)
	assert.Equal(t, "host", u.Host.Value)
}

func TestDefaultPorts(t *testing.T) {
	assert.EqualValues(t, 80, weburl.DefaultPort(weburl.SchemeHTTP))
	assert.EqualValues(t, 443, weburl.DefaultPort(weburl.SchemeHTTPS))
	assert.EqualValues(t, 80, weburl.DefaultPort(weburl.SchemeWS))
	assert.EqualValues(t, 443, weburl.DefaultPort(weburl.SchemeWSS))
	assert.EqualValues(t, 21, weburl.DefaultPort(weburl.SchemeFTP))
	assert.EqualValues(t, 123, weburl.DefaultPort(weburl.SchemeNTP))
}

func TestBase64URLRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("a"),
		[]byte("ab"),
		[]byte("abc"),
		[]byte("the quick brown fox jumps over the lazy dog 0123456789"),
		{0x00, 0xFF, 0x10, 0xEE},
	}
	for _, in := range inputs {
		enc := weburl.Base64URLEncode(in)
		assert.NotContains(t, enc, "=")
		out := weburl.Base64URLDecode(enc, "")
		assert.Equal(t, in, out)
	}
}

func TestPercentEncodeDecodeRoundTrip(t *testing.T) {
	in := []byte("Hello World! / ? # & = + 100%")
	enc := weburl.PercentEncode(in)
	assert.NotContains(t, enc, " ")
	out := weburl.PercentDecode(enc)
	assert.Equal(t, in, out)
}

func TestPercentDecodeMalformedEscapeTruncatesSilently(t *testing.T) {
	out := weburl.PercentDecode("abc%")
	assert.Equal(t, []byte("abc"), out)
	out = weburl.PercentDecode("abc%zz-rest")
	assert.Equal(t, []byte("abc"), out)
}
