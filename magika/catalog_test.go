package magika

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadContentTypeCatalog(t *testing.T) {
	p := writeTempFile(t, "content_types_kb.min.json", `{
		"python": {"mime_type": "text/x-python", "group": "code", "description": "Python source", "extensions": ["py"], "is_text": true},
		"pdf": {"mime_type": null, "group": null, "description": null, "extensions": ["pdf"], "is_text": false},
		"markdown": {"mime_type": null, "group": "document", "description": null, "extensions": ["md"], "is_text": true}
	}`)

	catalog, err := LoadContentTypeCatalog(p)
	if err != nil {
		t.Fatal(err)
	}

	python, err := catalog.Info("python")
	if err != nil {
		t.Fatal(err)
	}
	want := ContentTypeInfo{Label: "python", MimeType: "text/x-python", Group: "code", Description: "Python source", Extensions: []string{"py"}, IsText: true}
	if d := cmp.Diff(want, python); d != "" {
		t.Errorf("python mismatch (-want +got):\n%s", d)
	}

	pdf, err := catalog.Info("pdf")
	if err != nil {
		t.Fatal(err)
	}
	if pdf.MimeType != defaultUnknownMimeType {
		t.Errorf("pdf mime type = %q, want default unknown mime type", pdf.MimeType)
	}
	if pdf.Group != defaultGroup {
		t.Errorf("pdf group = %q, want default group", pdf.Group)
	}
	if pdf.Description != "pdf" {
		t.Errorf("pdf description = %q, want label fallback", pdf.Description)
	}

	markdown, err := catalog.Info("markdown")
	if err != nil {
		t.Fatal(err)
	}
	if markdown.MimeType != defaultTextMimeType {
		t.Errorf("markdown mime type = %q, want default text mime type", markdown.MimeType)
	}
	if markdown.Group != "document" {
		t.Errorf("markdown group = %q, want document (non-null override kept)", markdown.Group)
	}
}

func TestContentTypeCatalogInfoUndefinedIsSynthetic(t *testing.T) {
	catalog := ContentTypeCatalog{}
	info, err := catalog.Info(ContentTypeUndefined)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(undefinedInfo, info); d != "" {
		t.Errorf("want synthetic undefinedInfo (-want +got):\n%s", d)
	}
}

func TestContentTypeCatalogInfoUnknownLabelErrors(t *testing.T) {
	catalog := ContentTypeCatalog{}
	_, err := catalog.Info("not-a-real-label")
	if !errors.Is(err, ErrUnknownContentType) {
		t.Errorf("err = %v, want ErrUnknownContentType", err)
	}
}

func TestLoadContentTypeCatalogMissingFile(t *testing.T) {
	_, err := LoadContentTypeCatalog(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if !errors.Is(err, ErrCatalogFileNotFound) {
		t.Errorf("err = %v, want ErrCatalogFileNotFound", err)
	}
}

func TestLoadContentTypeCatalogMalformed(t *testing.T) {
	p := writeTempFile(t, "bad.json", `{not valid json`)
	_, err := LoadContentTypeCatalog(p)
	if !errors.Is(err, ErrMalformedConfig) {
		t.Errorf("err = %v, want ErrMalformedConfig", err)
	}
}
