// File: httpcodec/startline.go
// Author: momentics <momentics@gmail.com>

package httpcodec

import "strconv"

func parseHTTPVersion(text string) (major, minor int, ok bool) {
	if len(text) != 8 || text[:5] != "HTTP/" || text[6] != '.' {
		return 0, 0, false
	}
	maj, err1 := strconv.Atoi(text[5:6])
	min, err2 := strconv.Atoi(text[7:8])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return maj, min, true
}

func parseStatusCode(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 100 || n > 599 {
		return 0, false
	}
	return n, true
}

// splitTarget splits a request-target into path, query, fragment, mirroring
// weburl's delimiter rules ('?' then '#').
func splitTarget(target string) (path, query, fragment string) {
	if hashIdx := indexByte(target, '#'); hashIdx >= 0 {
		fragment = target[hashIdx+1:]
		target = target[:hashIdx]
	}
	if qIdx := indexByte(target, '?'); qIdx >= 0 {
		query = target[qIdx+1:]
		target = target[:qIdx]
	}
	path = target
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path, query, fragment
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// splitHeaderLine splits "Name: value" into its parts. A line with no ':'
// is malformed and skipped by the caller.
func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := indexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	value = trimSpace(line[idx+1:])
	return name, value, true
}

func trimSpace(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
