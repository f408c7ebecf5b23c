// File: cdm/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package cdm is a demonstration consumer of rpcruntime: a Go shape of
// the content-decryption interfaces IAccessorOCDM/ISession, registered
// as rpcruntime interfaces so a proxy on one side of a channel can drive
// a real implementation on the other. Grounded on
// original_source/Source/ocdm/IOCDM.h (method surface),
// original_source/Source/ocdm/open_cdm.h (key status/type constants),
// and original_source/Source/ocdm/ProxyStubs.cpp (the dispatch shape
// this package's stub tables follow method-for-method). GStreamer
// adapters and vendor secure-buffer allocators are out of scope, per
// spec.md's explicit non-goal; DataExchange is reduced to an opaque
// produce/consume ring (dataexchange.go).
package cdm
