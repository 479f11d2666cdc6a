package web

import (
	"embed"
	"fmt"

	"salesadmin/internal/mounts"
)

//go:embed static
var staticFS embed.FS

//go:embed templates
var templatesFS embed.FS

// fileMounts holds the static and template file mounts for the web
// server. In development mode the mounts point at the configured
// on-disk directories so edits show without a rebuild; otherwise the
// embedded copies are used.
type fileMounts struct {
	static    *mounts.FileMount
	templates *mounts.FileMount
}

// makeMounts builds the web server file mounts. staticPath and
// templatesPath override the embedded copies when non-empty.
func makeMounts(staticPath, templatesPath string) (*fileMounts, error) {
	fm := fileMounts{}
	var err error
	fm.static, err = mounts.NewFileMount("static", staticFS, staticPath)
	if err != nil {
		return nil, fmt.Errorf("static mount error: %w", err)
	}
	fm.templates, err = mounts.NewFileMount("templates", templatesFS, templatesPath)
	if err != nil {
		return nil, fmt.Errorf("templates mount error: %w", err)
	}
	return &fm, nil
}
