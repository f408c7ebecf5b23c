// control/env.go
// Author: momentics <momentics@gmail.com>
//
// Process environment access. LoadEnvironment reads an optional .env
// file through godotenv before the well-known variables are consulted,
// so deployments can ship endpoint settings next to the binary.

package control

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnvironment merges the given dotenv files (default ".env") into
// the process environment. Variables already set in the environment win.
func LoadEnvironment(files ...string) {
	envOnce.Do(func() {
		// godotenv returns an error when no file exists; that is the
		// common case and not worth surfacing.
		_ = godotenv.Load(files...)
	})
}

// ThunderAccess returns the default remote endpoint (host:port) for
// JSON-RPC links, or "" when THUNDER_ACCESS is not set.
func ThunderAccess() string {
	LoadEnvironment()
	return os.Getenv("THUNDER_ACCESS")
}

// OpenCDMServer returns the content-decryption server address, or ""
// when OPEN_CDM_SERVER is not set.
func OpenCDMServer() string {
	LoadEnvironment()
	return os.Getenv("OPEN_CDM_SERVER")
}
