package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", "TPAResults.txt"},
		{"no filename", "attachment", "TPAResults.txt"},
		{"quoted", `attachment; filename="report.txt"`, "report.txt"},
		{"unquoted", "attachment; filename=report.txt", "report.txt"},
		{"extended", "attachment; filename*=UTF-8''r%C3%A9sultats.txt", "résultats.txt"},
		{"lenient with spaces", `attachment; filename= "my report.txt" `, "my report.txt"},
		{"no space after semicolon", "attachment;filename=report.csv", "report.csv"},
		{"lenient keeps trailing text", `attachment; filename="a.txt"; junk`, "a.txt; junk"},
		{"unix path", `attachment; filename="../../etc/passwd"`, "passwd"},
		{"windows path", `attachment; filename="C:\reports\out.txt"`, "out.txt"},
		{"dot dot", `attachment; filename=".."`, "TPAResults.txt"},
		{"empty value", `attachment; filename=""`, "TPAResults.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromDisposition(tt.header, "TPAResults.txt"))
		})
	}
}
