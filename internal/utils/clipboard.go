package utils

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// CopyToClipboard places content on the system clipboard
func CopyToClipboard(content string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.WriteAll(content)
}
