package validator

import (
	"mime"
	"strings"
)

// FilenameFromDisposition resolves the result filename from a
// Content-Disposition header value, returning fallback when the header does
// not carry one.
//
// Well formed headers are parsed with mime.ParseMediaType so that RFC 5987
// filename* values are honoured. Anything else goes through the lenient rule
// the validation services have always relied on: everything after
// "filename=" with quotes removed.
//
// Directory components are stripped from the result.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" || !strings.Contains(header, "filename") {
		return fallback
	}

	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}

	if name == "" {
		if i := strings.Index(header, "filename="); i != -1 {
			name = header[i+len("filename="):]
			name = strings.ReplaceAll(name, `"`, "")
			name = strings.TrimSpace(name)
		}
	}

	name = baseName(name)
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}

// baseName drops any unix or windows path prefix
func baseName(name string) string {
	if p := strings.LastIndexAny(name, `/\`); p != -1 {
		name = name[p+1:]
	}
	return strings.TrimSpace(name)
}
