// File: jwttoken/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package jwttoken implements the HS256 JSON Web Token helper: encode an
// opaque JSON payload into a signed three-part token, and decode/verify
// one back into its payload, grounded on
// original_source/Source/websocket/JSONWebToken.h/.cpp.
package jwttoken
