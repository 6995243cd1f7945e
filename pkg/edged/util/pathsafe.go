package util

import "strings"

// IsSafeRelPath reports whether path is a safe relative path component for
// the static file endpoint: non-empty, not rooted, no backslashes, and no
// "." or ".." segment. It does not touch the filesystem — it is a pure
// predicate over the path string, same as the C source's
// util_static_path_is_safe.
func IsSafeRelPath(path string) bool {
	if path == "" {
		return false
	}
	if path[0] == '/' {
		return false
	}
	if strings.ContainsRune(path, '\\') {
		return false
	}

	seg := path
	for {
		idx := strings.IndexByte(seg, '/')
		var part string
		if idx < 0 {
			part = seg
		} else {
			part = seg[:idx]
		}

		switch {
		case part == "":
			return false
		case part == ".":
			return false
		case part == "..":
			return false
		}

		if idx < 0 {
			break
		}
		seg = seg[idx+1:]
	}

	return true
}
