package httpmsg_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"testing"

	"github.com/momentics/weblink-rpc/httpmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedBodyDigestMatchesHMACOverStream(t *testing.T) {
	key := []byte("shared-secret")
	payload := []byte("the payload under signature")

	signed := httpmsg.NewSignedBody(httpmsg.NewTextBody(payload), key)
	require.EqualValues(t, len(payload), signed.BeginSerialize())

	// Emit through a deliberately tiny buffer so the HMAC is fed in pieces.
	buf := make([]byte, 5)
	var out []byte
	for {
		n := signed.Emit(buf)
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	signed.End()
	assert.Equal(t, payload, out)

	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	assert.Equal(t, mac.Sum(nil), signed.Digest())
}

func TestSignedBodyDigestOnAbsorb(t *testing.T) {
	key := []byte("k")
	signed := httpmsg.NewSignedBody(httpmsg.NewTextBodySink(), key)
	signed.BeginDeserialize()
	signed.Absorb([]byte("part-1 "))
	signed.Absorb([]byte("part-2"))
	signed.End()

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("part-1 part-2"))
	assert.Equal(t, mac.Sum(nil), signed.Digest())

	inner := signed.Inner().(*httpmsg.TextBody)
	assert.Equal(t, "part-1 part-2", string(inner.Bytes()))
}

func TestMessageFactoriesRecycle(t *testing.T) {
	req := httpmsg.Requests.Acquire(httpmsg.VerbGET, "/status")
	assert.Equal(t, httpmsg.VerbGET, req.Verb)
	assert.Equal(t, "/status", req.Path)
	req.Host = httpmsg.Optional[string]{Value: "example", Set: true}
	httpmsg.Requests.Release(req)

	// A recycled request comes back fully reset.
	again := httpmsg.Requests.Acquire(httpmsg.VerbPOST, "/ingest")
	assert.Equal(t, httpmsg.VerbPOST, again.Verb)
	assert.False(t, again.Host.Set)
	httpmsg.Requests.Release(again)

	resp := httpmsg.Responses.Acquire(204, "No Content")
	assert.Equal(t, 204, resp.Status)
	httpmsg.Responses.Release(resp)
}
