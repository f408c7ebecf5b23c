// File: jwttoken/token.go
// Author: momentics <momentics@gmail.com>
//
// JSONWebToken mirrors JSONWebToken.h/.cpp's Encode/Decode pair: only
// HS256 is specified, the header is precomputed once per key, and
// Decode returns an empty payload (rather than an error) when the
// signature fails to verify is generalized here into a Go error so
// callers can distinguish "bad signature" from "malformed token" —
// both surface through api.ErrCodeInvalidSignature.

package jwttoken

import (
	"encoding/base64"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/momentics/weblink-rpc/api"
)

var b64 = base64.RawURLEncoding

const header = `{"alg":"HS256","typ":"JWT"}`

// JSONWebToken signs and verifies tokens under a single HMAC key, per
// JSONWebToken's constructor (mode is fixed to SHA256, the only mode the
// original declares).
type JSONWebToken struct {
	key           []byte
	encodedHeader string
}

// New constructs a JSONWebToken over key, precomputing the base64url
// header segment once, per JSONWebToken::JSONWebToken.
func New(key []byte) *JSONWebToken {
	return &JSONWebToken{
		key:           key,
		encodedHeader: b64.EncodeToString([]byte(header)),
	}
}

// Encode produces header.payload.signature for payload, per
// JSONWebToken::Encode.
func (t *JSONWebToken) Encode(payload []byte) (string, error) {
	encodedPayload := b64.EncodeToString(payload)
	signingString := t.encodedHeader + "." + encodedPayload

	sig, err := jwt.SigningMethodHS256.Sign(signingString, t.key)
	if err != nil {
		return "", api.NewError(api.ErrCodeInvalidSignature, "sign: "+err.Error())
	}

	return signingString + "." + b64.EncodeToString(sig), nil
}

// Decode splits token into its three segments, verifies the signature
// with a constant-time comparison against a freshly computed HMAC, and
// returns the decoded payload on success, per JSONWebToken::Decode.
func (t *JSONWebToken) Decode(token string) ([]byte, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, api.NewError(api.ErrCodeInvalidSignature, "malformed token")
	}
	encodedHeader, encodedPayload, encodedSig := parts[0], parts[1], parts[2]

	sig, err := b64.DecodeString(encodedSig)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidSignature, "malformed signature")
	}

	signingString := encodedHeader + "." + encodedPayload
	if err := jwt.SigningMethodHS256.Verify(signingString, sig, t.key); err != nil {
		return nil, api.NewError(api.ErrCodeInvalidSignature, "signature mismatch")
	}

	payload, err := b64.DecodeString(encodedPayload)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidSignature, "malformed payload")
	}
	return payload, nil
}
