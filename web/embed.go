package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed components section layout.html
var content embed.FS

// FragmentsFS returns the file system holding components/ and section/.
func FragmentsFS() fs.FS {
	return content
}

// LayoutFS returns the file system holding the page layout.
func LayoutFS() fs.FS {
	sub, err := fs.Sub(content, ".")
	if err != nil {
		log.Fatalf("failed to create layout sub-filesystem: %v", err)
	}
	return sub
}
