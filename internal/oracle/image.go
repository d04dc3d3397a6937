package oracle

import (
	"path/filepath"
	"strings"
)

const localImageScheme = "file://"

// LocalImage marks an absolute file path as an image stored on this host.
// Local images are served under /media rather than linked directly.
func LocalImage(path string) string {
	return localImageScheme + filepath.ToSlash(path)
}

// LocalImagePath returns the file behind an image made by LocalImage
func LocalImagePath(image string) (string, bool) {
	p, ok := strings.CutPrefix(image, localImageScheme)
	if !ok || p == "" {
		return "", false
	}
	return filepath.FromSlash(p), true
}
