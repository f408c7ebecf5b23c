// File: cdm/params.go
// Author: momentics <momentics@gmail.com>
//
// Parameter and result frames for each Accessor/Session method, taking
// the place of ProxyStubs.cpp's RPC::Data::Frame::Reader/Writer
// positional binary encoding with ordinary JSON structs.

package cdm

type isTypeSupportedParams struct {
	KeySystem string `json:"key_system"`
	MimeType  string `json:"mime_type"`
}

type isTypeSupportedResult struct {
	Supported bool `json:"supported"`
}

type createSessionParams struct {
	KeySystem    string `json:"key_system"`
	LicenseType  int32  `json:"license_type"`
	InitDataType string `json:"init_data_type"`
	InitData     []byte `json:"init_data"`
	CDMData      []byte `json:"cdm_data"`
}

type createSessionResult struct {
	SessionID string `json:"session_id"`
	Handle    uint32 `json:"handle"`
}

type setServerCertificateParams struct {
	KeySystem   string `json:"key_system"`
	Certificate []byte `json:"certificate"`
}

type updateParams struct {
	KeyMessage []byte `json:"key_message"`
}

type statusResult struct {
	Status KeyStatus `json:"status"`
}
