package web

import (
	"io/fs"
	"testing"
)

func TestMakeMounts(t *testing.T) {

	fm, err := makeMounts("", "")
	if err != nil {
		t.Fatal(err)
	}

	// Both mounts must serve the embedded assets at their roots.
	if _, err := fs.Stat(fm.static, "main.css"); err != nil {
		t.Errorf("static mount missing main.css: %v", err)
	}
	if _, err := fs.Stat(fm.templates, "base.html"); err != nil {
		t.Errorf("templates mount missing base.html: %v", err)
	}
}

func TestMakeMountsDevOverride(t *testing.T) {

	_, err := makeMounts("", "/no/such/dir")
	if err == nil {
		t.Fatal("expected error for missing templates directory")
	}
}
