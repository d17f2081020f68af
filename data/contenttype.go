package data

import (
	"bytes"
	"encoding/json"

	"github.com/mwantia/mediarepo/data/errors"
)

// FileClass groups content types by how their bytes are handled.
type FileClass int

const (
	FileClassUnknown FileClass = iota
	FileClassPlain
	FileClassImage
)

func (c FileClass) String() string {
	switch c {
	case FileClassPlain:
		return "plain"
	case FileClassImage:
		return "image"
	default:
		return "unknown"
	}
}

// SniffLength is the minimum number of bytes Sniff accepts.
const SniffLength = 8

// ContentType is one immutable registry entry.
// Entries are only handed out as pointers into the registry; never modify them.
type ContentType struct {
	ID    int64
	Class FileClass
	Ext   string
	MIME  string
	Magic []byte
}

var (
	ContentTypeUnknown = &ContentType{ID: 0x000, Class: FileClassUnknown, Ext: "", MIME: "application/octet-stream"}
	ContentTypeJSON    = &ContentType{ID: 0x001, Class: FileClassPlain, Ext: ".json", MIME: "application/json"}
	ContentTypeGIF87a  = &ContentType{ID: 0x002, Class: FileClassImage, Ext: ".gif", MIME: "image/gif", Magic: []byte{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}}
	ContentTypeGIF89a  = &ContentType{ID: 0x003, Class: FileClassImage, Ext: ".gif", MIME: "image/gif", Magic: []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}
	ContentTypeBMP     = &ContentType{ID: 0x004, Class: FileClassImage, Ext: ".bmp", MIME: "image/bmp", Magic: []byte{0x42, 0x4D}}
	ContentTypeJPEG    = &ContentType{ID: 0x005, Class: FileClassImage, Ext: ".jpg", MIME: "image/jpeg", Magic: []byte{0xFF, 0xD8, 0xFF}}
	ContentTypePNG     = &ContentType{ID: 0x006, Class: FileClassImage, Ext: ".png", MIME: "image/png", Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}}
	ContentTypeHEIF    = &ContentType{ID: 0x007, Class: FileClassImage, Ext: ".heif", MIME: "image/heif", Magic: []byte{0x66, 0x74, 0x79, 0x70}}
	ContentTypeTIFFLE  = &ContentType{ID: 0x008, Class: FileClassImage, Ext: ".tif", MIME: "image/tiff", Magic: []byte{0x49, 0x49, 0x2A, 0x00}}
	ContentTypeTIFFBE  = &ContentType{ID: 0x009, Class: FileClassImage, Ext: ".tiff", MIME: "image/tiff", Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}}
)

// ContentTypeThumbnail is the encoding every generated thumbnail uses.
var ContentTypeThumbnail = ContentTypeJPEG

// registry order decides every lookup: the first matching entry wins.
// Overlapping magics (both GIF variants share ".gif") are resolved by position only.
// TODO: replace positional matching with an explicit priority once HEIF brands are sniffed at offset 4.
var registry = []*ContentType{
	ContentTypeUnknown,
	ContentTypeJSON,
	ContentTypeGIF87a,
	ContentTypeGIF89a,
	ContentTypeBMP,
	ContentTypeJPEG,
	ContentTypePNG,
	ContentTypeHEIF,
	ContentTypeTIFFLE,
	ContentTypeTIFFBE,
}

// Guess returns the first entry whose extension equals ext (including the dot),
// or ContentTypeUnknown.
func Guess(ext string) *ContentType {
	for _, ct := range registry {
		if ct.Ext == ext {
			return ct
		}
	}

	return ContentTypeUnknown
}

// Sniff identifies content by its leading magic bytes.
// On failure it returns ContentTypeUnknown together with ErrUnknownFileContentType.
func Sniff(content []byte) (*ContentType, error) {
	if len(content) < SniffLength {
		return ContentTypeUnknown, errors.UnknownContentType("content shorter than 8 bytes")
	}

	for _, ct := range registry {
		if len(ct.Magic) > 0 && bytes.HasPrefix(content, ct.Magic) {
			return ct, nil
		}
	}

	return ContentTypeUnknown, errors.UnknownContentType("no magic matched")
}

// FromID returns the entry registered under id, or ContentTypeUnknown.
func FromID(id int64) *ContentType {
	for _, ct := range registry {
		if ct.ID == id {
			return ct
		}
	}

	return ContentTypeUnknown
}

func (ct *ContentType) IsUnknown() bool {
	return ct == nil || ct.ID == ContentTypeUnknown.ID
}

func (ct *ContentType) String() string {
	if ct == nil {
		return ContentTypeUnknown.MIME
	}
	return ct.MIME
}

// MarshalJSON encodes the entry as its registry id.
func (ct *ContentType) MarshalJSON() ([]byte, error) {
	if ct == nil {
		return json.Marshal(ContentTypeUnknown.ID)
	}
	return json.Marshal(ct.ID)
}

// UnmarshalJSON copies the registry entry of the decoded id into ct.
// Unregistered ids decode as ContentTypeUnknown.
func (ct *ContentType) UnmarshalJSON(raw []byte) error {
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return errors.Invalid("content type id: %v", err)
	}

	*ct = *FromID(id)
	return nil
}
