// Package web embeds the static roster UI served under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// StaticFS returns the filesystem rooted at the static assets.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
