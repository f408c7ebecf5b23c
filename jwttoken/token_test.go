package jwttoken_test

import (
	"testing"

	"github.com/momentics/weblink-rpc/jwttoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	token := jwttoken.New([]byte("super-secret-key"))

	payload := []byte(`{"sub":"session-1","exp":1999999999}`)
	wire, err := token.Encode(payload)
	require.NoError(t, err)
	assert.NotEmpty(t, wire)

	decoded, err := token.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEncodeEmitsThreeDotSeparatedSegments(t *testing.T) {
	token := jwttoken.New([]byte("key"))
	wire, err := token.Encode([]byte(`{}`))
	require.NoError(t, err)

	segments := 1
	for _, c := range wire {
		if c == '.' {
			segments++
		}
	}
	assert.Equal(t, 3, segments)
	assert.NotContains(t, wire, "=", "no padding should be emitted")
}

func TestDecodeRejectsTamperedSignature(t *testing.T) {
	token := jwttoken.New([]byte("key"))
	wire, err := token.Encode([]byte(`{"amount":1}`))
	require.NoError(t, err)

	tampered := wire[:len(wire)-4] + "abcd"
	_, err = token.Decode(tampered)
	assert.Error(t, err)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	signer := jwttoken.New([]byte("key-a"))
	verifier := jwttoken.New([]byte("key-b"))

	wire, err := signer.Encode([]byte(`{"x":1}`))
	require.NoError(t, err)

	_, err = verifier.Decode(wire)
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedToken(t *testing.T) {
	token := jwttoken.New([]byte("key"))
	_, err := token.Decode("not-a-token")
	assert.Error(t, err)
}
