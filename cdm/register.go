// File: cdm/register.go
// Author: momentics <momentics@gmail.com>
//
// Both sides of a channel must announce the same InterfaceID mapping at
// startup (spec.md section 4.7); this package does so in init() so any
// importer gets AccessorInterfaceID/SessionInterfaceID registered for
// free, mirroring how the original's generated ProxyStubs.cpp is linked
// into both the client and server binary.
package cdm

import "github.com/momentics/weblink-rpc/rpcruntime"

func init() {
	rpcruntime.RegisterInterface(AccessorInterfaceID, accessorStubMethods, NewAccessorProxyFactory())
	rpcruntime.RegisterInterface(SessionInterfaceID, sessionStubMethods, NewSessionProxyFactory())
}
