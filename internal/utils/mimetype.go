package utils

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ContentTypeXLSX is the registered media type of Office Open XML workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Common file type mappings. These take precedence over the system mime
// table, which is often missing the office types on minimal hosts.
var commonTypes = map[string]string{
	".xlsx": ContentTypeXLSX,
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
}

// DetectContentType detects the MIME type of a file by extension first and
// by sniffing the first 512 bytes of reader second
func DetectContentType(filePath string, reader io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if contentType, ok := commonTypes[ext]; ok {
		return contentType, nil
	}

	if reader != nil {
		buffer := make([]byte, 512)
		n, err := reader.Read(buffer)
		if err != nil && err != io.EOF {
			return "", err
		}

		contentType := http.DetectContentType(buffer[:n])
		if contentType != "application/octet-stream" {
			return contentType, nil
		}
	}

	return "application/octet-stream", nil
}

// IsTextType checks if the content type represents text a preview can show
func IsTextType(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/json" ||
		mediaType == "application/xml"
}
