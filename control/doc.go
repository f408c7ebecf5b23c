// Package control
// Author: momentics <momentics@gmail.com>
//
// Cross-cutting process concerns: the golog-backed logging accessor and
// the documented environment variables (THUNDER_ACCESS, OPEN_CDM_SERVER)
// loaded through godotenv.
package control
