// Package web embeds the page templates and static assets of the browser UI.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other assets served under /static/.
func StaticFS() fs.FS {
	return sub("static")
}

// TemplatesFS returns the page templates, one file per page plus layout.html.
func TemplatesFS() fs.FS {
	return sub("templates")
}

// sub panics on error; dir is always one of the embedded directories.
func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: embedded directory " + dir + ": " + err.Error())
	}
	return f
}
