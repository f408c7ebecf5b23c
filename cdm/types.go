// File: cdm/types.go
// Author: momentics <momentics@gmail.com>
//
// KeyStatus, SessionCallback, Session and Accessor mirror IOCDM.h's
// ISession::KeyStatus, ISession::ICallback, ISession, and
// IAccessorOCDM, reduced to Go interfaces: no reference-counted
// IUnknown base, explicit Close instead of a destructor.

package cdm

import "github.com/momentics/weblink-rpc/rpcruntime"

// KeyStatus mirrors IOCDM.h's ISession::KeyStatus enum.
type KeyStatus int

const (
	KeyUsable KeyStatus = iota
	KeyExpired
	KeyReleased
	KeyOutputRestricted
	KeyOutputDownscaled
	KeyStatusPending
	KeyInternalError
)

// AccessorInterfaceID and SessionInterfaceID are the stable rpcruntime
// interface identities this package announces.
const (
	AccessorInterfaceID rpcruntime.InterfaceID = 1
	SessionInterfaceID  rpcruntime.InterfaceID = 2
)

// Accessor method indices, matching the stub table order in
// accessor.go / ProxyStubs.cpp's AccesorOCDMStubMethods array.
const (
	MethodIsTypeSupported = iota
	MethodCreateSession
	MethodSetServerCertificate
)

// Session method indices, matching session.go's stub table.
const (
	MethodLoad = iota
	MethodUpdate
	MethodRemove
	MethodStatus
	MethodClose
)

// SessionCallback receives events originated from a Session, per
// IOCDM.h's ISession::ICallback.
type SessionCallback interface {
	OnKeyMessage(keyMessage []byte, url string)
	OnKeyReady()
	OnKeyError(code int16, sysError int32, message string)
	OnKeyStatusUpdate(status KeyStatus)
}

// Session is a DRM context that can decrypt data using a given key, per
// IOCDM.h's ISession.
type Session interface {
	Load() error
	Update(keyMessage []byte) error
	Remove() error
	Status() KeyStatus
	BufferID() string
	SessionID() string
	Close() error
}

// Accessor is the entry point into the CDM, per IOCDM.h's IAccessorOCDM.
type Accessor interface {
	IsTypeSupported(keySystem, mimeType string) bool
	CreateSession(keySystem string, licenseType int32, initDataType string, initData, cdmData []byte, callback SessionCallback) (sessionID string, session Session, err error)
	SetServerCertificate(keySystem string, certificate []byte) error
}
