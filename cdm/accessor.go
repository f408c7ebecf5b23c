// File: cdm/accessor.go
// Author: momentics <momentics@gmail.com>
//
// memoryAccessor is the real, callee-side Accessor implementation;
// accessorProxy is the caller-side stand-in a remote channel sees,
// grounded on ProxyStubs.cpp's AccesorOCDMStubMethods dispatch table
// and its paired proxy construction.

package cdm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/momentics/weblink-rpc/rpcruntime"
)

// memoryAccessor is a minimal in-process Accessor: it tracks which key
// systems it reports as supported and hands out sessionImpl instances,
// sufficient to exercise the CreateSession/SetServerCertificate/
// IsTypeSupported round trip end to end without any real DRM backend.
type memoryAccessor struct {
	mu         sync.Mutex
	keySystems map[string]bool
	certs      map[string][]byte
	sessionSeq int
}

// NewMemoryAccessor constructs an Accessor that reports supportedSystems
// as supported and no others.
func NewMemoryAccessor(supportedSystems ...string) Accessor {
	set := make(map[string]bool, len(supportedSystems))
	for _, s := range supportedSystems {
		set[s] = true
	}
	return &memoryAccessor{keySystems: set, certs: make(map[string][]byte)}
}

func (a *memoryAccessor) IsTypeSupported(keySystem, _ string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keySystems[keySystem]
}

func (a *memoryAccessor) CreateSession(keySystem string, licenseType int32, initDataType string, initData, cdmData []byte, callback SessionCallback) (string, Session, error) {
	a.mu.Lock()
	if !a.keySystems[keySystem] {
		a.mu.Unlock()
		return "", nil, fmt.Errorf("cdm: key system %q not supported", keySystem)
	}
	a.sessionSeq++
	sessionID := fmt.Sprintf("session-%d", a.sessionSeq)
	a.mu.Unlock()

	session := newMemorySession(sessionID, licenseType, initDataType, initData, cdmData, callback)
	if callback != nil {
		callback.OnKeyReady()
	}
	return sessionID, session, nil
}

func (a *memoryAccessor) SetServerCertificate(keySystem string, certificate []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.keySystems[keySystem] {
		return fmt.Errorf("cdm: key system %q not supported", keySystem)
	}
	a.certs[keySystem] = append([]byte(nil), certificate...)
	return nil
}

// accessorStubMethods is AccessorInterfaceID's dispatch table, method
// index order matching the Method* constants in types.go.
var accessorStubMethods = []rpcruntime.StubMethod{
	MethodIsTypeSupported: func(_ *rpcruntime.StubAdministrator, recv any, raw json.RawMessage) (json.RawMessage, error) {
		var p isTypeSupportedParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		supported := recv.(Accessor).IsTypeSupported(p.KeySystem, p.MimeType)
		return json.Marshal(isTypeSupportedResult{Supported: supported})
	},
	MethodCreateSession: func(admin *rpcruntime.StubAdministrator, recv any, raw json.RawMessage) (json.RawMessage, error) {
		var p createSessionParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		sessionID, session, err := recv.(Accessor).CreateSession(p.KeySystem, p.LicenseType, p.InitDataType, p.InitData, p.CDMData, nil)
		if err != nil {
			return nil, err
		}
		handle := admin.Announce(SessionInterfaceID, session)
		return json.Marshal(createSessionResult{SessionID: sessionID, Handle: handle})
	},
	MethodSetServerCertificate: func(_ *rpcruntime.StubAdministrator, recv any, raw json.RawMessage) (json.RawMessage, error) {
		var p setServerCertificateParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return nil, recv.(Accessor).SetServerCertificate(p.KeySystem, p.Certificate)
	},
}

// accessorProxy is the caller-side Accessor stand-in registered via
// NewAccessorProxyFactory.
type accessorProxy struct {
	admin  *rpcruntime.ProxyAdministrator
	handle uint32
}

// NewAccessorProxyFactory returns the rpcruntime.ProxyFactory for
// AccessorInterfaceID.
func NewAccessorProxyFactory() rpcruntime.ProxyFactory {
	return func(admin *rpcruntime.ProxyAdministrator, handle uint32) any {
		return &accessorProxy{admin: admin, handle: handle}
	}
}

var _ Accessor = (*accessorProxy)(nil)

func (a *accessorProxy) IsTypeSupported(keySystem, mimeType string) bool {
	params, _ := json.Marshal(isTypeSupportedParams{KeySystem: keySystem, MimeType: mimeType})
	resp, err := a.admin.Invoke(context.Background(), &rpcruntime.InvokeMessage{
		Interface: AccessorInterfaceID, Handle: a.handle, Method: MethodIsTypeSupported, Parameters: params,
	})
	if err != nil || resp.Error != "" {
		return false
	}
	var result isTypeSupportedResult
	_ = json.Unmarshal(resp.Result, &result)
	return result.Supported
}

func (a *accessorProxy) CreateSession(keySystem string, licenseType int32, initDataType string, initData, cdmData []byte, callback SessionCallback) (string, Session, error) {
	params, _ := json.Marshal(createSessionParams{
		KeySystem: keySystem, LicenseType: licenseType, InitDataType: initDataType, InitData: initData, CDMData: cdmData,
	})
	resp, err := a.admin.Invoke(context.Background(), &rpcruntime.InvokeMessage{
		Interface: AccessorInterfaceID, Handle: a.handle, Method: MethodCreateSession, Parameters: params,
	})
	if err != nil {
		return "", nil, err
	}
	if resp.Error != "" {
		return "", nil, fmt.Errorf("cdm: CreateSession: %s", resp.Error)
	}

	var result createSessionResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "", nil, err
	}

	proxy, err := a.admin.ProxyInstance(SessionInterfaceID, result.Handle)
	if err != nil {
		return "", nil, err
	}
	return result.SessionID, proxy.(Session), nil
}

func (a *accessorProxy) SetServerCertificate(keySystem string, certificate []byte) error {
	params, _ := json.Marshal(setServerCertificateParams{KeySystem: keySystem, Certificate: certificate})
	resp, err := a.admin.Invoke(context.Background(), &rpcruntime.InvokeMessage{
		Interface: AccessorInterfaceID, Handle: a.handle, Method: MethodSetServerCertificate, Parameters: params,
	})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("cdm: SetServerCertificate: %s", resp.Error)
	}
	return nil
}
