package magika

import (
	"encoding/json"
	"fmt"
	"os"
)

// ContentTypeLabel names the content type of an input. The set of values the
// model can produce is closed over its target_labels_space; in addition to
// those, a handful of reserved labels never come out of the model itself.
type ContentTypeLabel string

// Reserved labels. ContentTypeUndefined marks a MagikaPrediction.Dl that
// never reached the model; the rest are Dispatcher short-circuit outcomes.
const (
	ContentTypeUndefined ContentTypeLabel = "undefined"
	ContentTypeEmpty     ContentTypeLabel = "empty"
	ContentTypeUnknown   ContentTypeLabel = "unknown"
	ContentTypeTxt       ContentTypeLabel = "txt"
	ContentTypeDirectory ContentTypeLabel = "directory"
	ContentTypeSymlink   ContentTypeLabel = "symlink"
)

// ContentTypeInfo holds the descriptor of one content type, as loaded from
// the content types knowledge base. Immutable once loaded.
type ContentTypeInfo struct {
	Label       ContentTypeLabel
	MimeType    string
	Group       string
	Description string
	Extensions  []string
	IsText      bool
}

// undefinedInfo is the synthetic descriptor for the reserved UNDEFINED
// label. It never appears in a content types knowledge base because the
// model never predicts it.
var undefinedInfo = ContentTypeInfo{
	Label:       ContentTypeUndefined,
	MimeType:    "application/octet-stream",
	Group:       "unknown",
	Description: "Undefined",
}

// ContentTypeCatalog is a read-only map from content type label to its
// descriptor, loaded once at engine construction.
type ContentTypeCatalog map[ContentTypeLabel]ContentTypeInfo

// rawContentTypeInfo mirrors the on-disk JSON shape of the content types
// knowledge base, where mime_type, group and description may be null.
type rawContentTypeInfo struct {
	MimeType    *string  `json:"mime_type"`
	Group       *string  `json:"group"`
	Description *string  `json:"description"`
	Extensions  []string `json:"extensions"`
	IsText      bool     `json:"is_text"`
}

const (
	defaultTextMimeType    = "text/plain"
	defaultUnknownMimeType = "application/octet-stream"
	defaultGroup           = "unknown"
)

// LoadContentTypeCatalog reads and unmarshals a content types knowledge base
// from the given path. Null fields fall back to the defaults documented in
// spec.md §6.
func LoadContentTypeCatalog(path string) (ContentTypeCatalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCatalogFileNotFound, path, err)
	}
	var raw map[string]rawContentTypeInfo
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: content types knowledge base %q: %v", ErrMalformedConfig, path, err)
	}
	catalog := make(ContentTypeCatalog, len(raw))
	for label, info := range raw {
		ct := ContentTypeInfo{
			Label:      ContentTypeLabel(label),
			Extensions: info.Extensions,
			IsText:     info.IsText,
			Group:      defaultGroup,
		}
		switch {
		case info.MimeType != nil:
			ct.MimeType = *info.MimeType
		case info.IsText:
			ct.MimeType = defaultTextMimeType
		default:
			ct.MimeType = defaultUnknownMimeType
		}
		if info.Group != nil {
			ct.Group = *info.Group
		}
		if info.Description != nil {
			ct.Description = *info.Description
		} else {
			ct.Description = label
		}
		catalog[ContentTypeLabel(label)] = ct
	}
	return catalog, nil
}

// Info resolves a label to its descriptor. ContentTypeUndefined always
// resolves to a synthetic descriptor, since it is never present in a
// knowledge base (the model never predicts it).
func (c ContentTypeCatalog) Info(label ContentTypeLabel) (ContentTypeInfo, error) {
	if label == ContentTypeUndefined {
		return undefinedInfo, nil
	}
	ct, ok := c[label]
	if !ok {
		return ContentTypeInfo{}, fmt.Errorf("%w: %q", ErrUnknownContentType, label)
	}
	return ct, nil
}
