package httpcodec_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/momentics/weblink-rpc/httpcodec"
	"github.com/momentics/weblink-rpc/httpmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializeAll(t *testing.T, s interface{ Serialize([]byte) (int, bool) }) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 7) // deliberately small to force many Serialize calls
	for {
		n, done := s.Serialize(buf)
		out = append(out, buf[:n]...)
		if done {
			break
		}
		if n == 0 {
			t.Fatalf("serializer made no progress")
		}
	}
	return out
}

func TestRequestRoundTripTextBody(t *testing.T) {
	req := httpmsg.NewRequest(httpmsg.VerbPOST, "jsonrpc/Controller")
	req.Host = httpmsg.Optional[string]{Value: "example.com", Set: true}
	req.ContentType = httpmsg.Optional[string]{Value: "application/json", Set: true}
	req.SetBody(httpmsg.NewTextBody([]byte(`{"jsonrpc":"2.0","id":1,"method":"status"}`)))

	var ser httpcodec.RequestSerializer
	ser.Reset(req)
	wire := serializeAll(t, &ser)

	var parser httpcodec.RequestParser
	var got *httpmsg.Request
	parser.OnRequest = func(r *httpmsg.Request) { got = r }
	// feed in arbitrary small chunks to exercise incremental parsing
	for i := 0; i < len(wire); i += 3 {
		end := i + 3
		if end > len(wire) {
			end = len(wire)
		}
		parser.Feed(wire[i:end])
	}

	require.NotNil(t, got)
	assert.Equal(t, httpmsg.VerbPOST, got.Verb)
	assert.Equal(t, "jsonrpc/Controller", got.Path)
	assert.Equal(t, "example.com", got.Host.Value)
	body := got.Body().(*httpmsg.TextBody)
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"method":"status"}`, string(body.Bytes()))
}

func TestResponseChunkedRoundTrip(t *testing.T) {
	resp := httpmsg.NewResponse(200, "OK")
	resp.TransferEncoding = httpmsg.Optional[httpmsg.TransferEncoding]{Value: httpmsg.TransferEncodingChunked, Set: true}
	payload := bytes.Repeat([]byte("0123456789"), 2000) // forces multiple 8K chunks
	resp.SetBody(httpmsg.NewTextBody(payload))

	var ser httpcodec.ResponseSerializer
	ser.Reset(resp, false)
	wire := serializeAll(t, &ser)
	assert.Contains(t, string(wire), "Transfer-Encoding: chunked")

	var parser httpcodec.ResponseParser
	var got *httpmsg.Response
	parser.OnResponse = func(r *httpmsg.Response) { got = r }
	for i := 0; i < len(wire); i += 97 {
		end := i + 97
		if end > len(wire) {
			end = len(wire)
		}
		parser.Feed(wire[i:end])
	}
	require.NotNil(t, got)
	body := got.Body().(*httpmsg.TextBody)
	assert.Equal(t, payload, body.Bytes())
}

func TestHeadResponseHasNoBodyRegardlessOfContentLength(t *testing.T) {
	resp := httpmsg.NewResponse(200, "OK")
	resp.ContentLength = httpmsg.Optional[int64]{Value: 5, Set: true}

	wire := []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
	var parser httpcodec.ResponseParser
	parser.ExpectHeadResponse()
	var got *httpmsg.Response
	parser.OnResponse = func(r *httpmsg.Response) { got = r }
	parser.Feed(wire)
	require.NotNil(t, got)
	body := got.Body().(*httpmsg.TextBody)
	assert.Empty(t, body.Bytes())
}

func TestGzipChunkedBodySplitAcrossThreeChunks(t *testing.T) {
	plain := []byte(`{"hello":"world","n":42}`)
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	compressed := gz.Bytes()

	third := len(compressed) / 3
	chunk1 := compressed[:third]
	chunk2 := compressed[third : 2*third]
	chunk3 := compressed[2*third:]

	var wire bytes.Buffer
	wire.WriteString("POST /ingest HTTP/1.1\r\n")
	wire.WriteString("Content-Encoding: gzip\r\n")
	wire.WriteString("Transfer-Encoding: chunked\r\n")
	wire.WriteString("\r\n")
	for _, c := range [][]byte{chunk1, chunk2, chunk3} {
		if len(c) == 0 {
			continue
		}
		wire.WriteString(hexLen(len(c)))
		wire.WriteString("\r\n")
		wire.Write(c)
		wire.WriteString("\r\n")
	}
	wire.WriteString("0\r\n\r\n")

	var parser httpcodec.RequestParser
	var got *httpmsg.Request
	parser.OnRequest = func(r *httpmsg.Request) { got = r }
	data := wire.Bytes()
	for i := 0; i < len(data); i += 11 {
		end := i + 11
		if end > len(data) {
			end = len(data)
		}
		parser.Feed(data[i:end])
	}
	require.NotNil(t, got)
	body := got.Body().(*httpmsg.TextBody)
	assert.JSONEq(t, string(plain), string(body.Bytes()))
}

func hexLen(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%16]}, b...)
		n /= 16
	}
	return string(b)
}

func TestMalformedStartLineResyncs(t *testing.T) {
	wire := "GARBAGE LINE WITHOUT VERSION\r\nGET /ok HTTP/1.1\r\n\r\n"
	var parser httpcodec.RequestParser
	var got *httpmsg.Request
	parser.OnRequest = func(r *httpmsg.Request) { got = r }
	parser.Feed([]byte(wire))
	require.NotNil(t, got)
	assert.Equal(t, "ok", got.Path)
}
