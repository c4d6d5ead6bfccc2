// Package domain holds the data model shared by every layer of the extension
// subsystem: manifests, the content types exchanged with guests, and loaded-
// extension bookkeeping.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ContentType identifies what kind of content an extension serves.
type ContentType string

const (
	ContentTypeManga ContentType = "manga"
	ContentTypeAnime ContentType = "anime"
	ContentTypeComic ContentType = "comic"
)

// ExtensionExports declares which guest functions a manifest promises to export.
type ExtensionExports struct {
	Search           bool `json:"search" yaml:"search"`
	GetChapters      bool `json:"getChapters" yaml:"getChapters"`
	GetChapterImages bool `json:"getChapterImages" yaml:"getChapterImages"`
	IsMultiLanguage  bool `json:"isMultiLanguage" yaml:"isMultiLanguage"`
}

// ExtensionManifest is the document an extension ships as manifest.json.
type ExtensionManifest struct {
	Name          string           `json:"name" yaml:"name" validate:"required"`
	Version       string           `json:"version" yaml:"version" validate:"required"`
	Description   string           `json:"description" yaml:"description"`
	Author        string           `json:"author" yaml:"author"`
	NSFW          bool             `json:"nsfw" yaml:"nsfw"`
	Language      string           `json:"language" yaml:"language"`
	ExtensionType string           `json:"type" yaml:"type" validate:"required,oneof=manga anime comic"`
	BaseURL       string           `json:"baseUrl" yaml:"baseUrl"`
	Checksum      string           `json:"checksum" yaml:"checksum" validate:"required"`
	Exports       ExtensionExports `json:"exports" yaml:"exports"`
}

// ExtensionInfo is the control-plane's view of a discovered, on-disk extension.
type ExtensionInfo struct {
	ID        string
	Manifest  ExtensionManifest
	WasmPath  string
	Installed bool
}

// ExtensionDescriptor is the flat projection returned to callers asking what
// an extension can do: the manifest fields mirrored per-ID, plus the
// Installed and Loaded flags derived from the loader and the registry. It is
// a view, never authoritative.
type ExtensionDescriptor struct {
	ID               string
	Name             string
	Version          string
	NSFW             bool
	Language         string
	ExtensionType    string
	Search           bool
	GetChapters      bool
	GetChapterImages bool
	IsMultiLanguage  bool
	Installed        bool
	Loaded           bool
}

// DescriptorFromManifest projects a manifest into its flat descriptor form.
func DescriptorFromManifest(id string, m ExtensionManifest) ExtensionDescriptor {
	return ExtensionDescriptor{
		ID:               id,
		Name:             m.Name,
		Version:          m.Version,
		NSFW:             m.NSFW,
		Language:         m.Language,
		ExtensionType:    m.ExtensionType,
		Search:           m.Exports.Search,
		GetChapters:      m.Exports.GetChapters,
		GetChapterImages: m.Exports.GetChapterImages,
		IsMultiLanguage:  m.Exports.IsMultiLanguage,
	}
}

// BoolOrString accepts a field some sources serialize as either a real bool
// or the strings "true"/"false". It always re-serializes as a bool.
type BoolOrString struct {
	Value bool
}

// UnmarshalJSON accepts true, false, "true", or "false".
func (b *BoolOrString) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", `"true"`:
		b.Value = true
	case "false", `"false"`:
		b.Value = false
	default:
		return fmt.Errorf("cannot decode %s as bool-or-string", data)
	}
	return nil
}

// MarshalJSON always emits a plain bool.
func (b BoolOrString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Value)
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (b *BoolOrString) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBool(b.Value)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (b *BoolOrString) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		b.Value = t
	case string:
		b.Value = t == "true"
	default:
		return fmt.Errorf("cannot decode %T as bool-or-string", v)
	}
	return nil
}

// Favorite is a user's saved reference to a piece of content, in the full
// shape exchanged with extensions over the wire.
type Favorite struct {
	ID              string        `json:"id" msgpack:"id"`
	UserID          *string       `json:"userId,omitempty" msgpack:"userId,omitempty"`
	Name            string        `json:"name" msgpack:"name"`
	FolderName      string        `json:"folderName" msgpack:"folderName"`
	Link            string        `json:"link" msgpack:"link"`
	Cover           string        `json:"cover" msgpack:"cover"`
	Source          string        `json:"source" msgpack:"source"`
	SourceID        string        `json:"sourceId" msgpack:"sourceId"`
	Kind            ContentType   `json:"type" msgpack:"type"`
	ExtraName       *string       `json:"extraName,omitempty" msgpack:"extraName,omitempty"`
	TitleColor      *string       `json:"titleColor,omitempty" msgpack:"titleColor,omitempty"`
	CardColor       *string       `json:"cardColor,omitempty" msgpack:"cardColor,omitempty"`
	MALID           *string       `json:"malId,omitempty" msgpack:"malId,omitempty"`
	AnilistID       *string       `json:"anilistId,omitempty" msgpack:"anilistId,omitempty"`
	Status          *string       `json:"status,omitempty" msgpack:"status,omitempty"`
	Grade           *float64      `json:"grade,omitempty" msgpack:"grade,omitempty"`
	Author          *string       `json:"author,omitempty" msgpack:"author,omitempty"`
	IsUltraFavorite *BoolOrString `json:"isUltraFavorite,omitempty" msgpack:"isUltraFavorite,omitempty"`
	Description     *string       `json:"description,omitempty" msgpack:"description,omitempty"`
	Marks           []any         `json:"marks,omitempty" msgpack:"marks,omitempty"`
	Readeds         []any         `json:"readeds,omitempty" msgpack:"readeds,omitempty"`
}

// Chapter is a single unit of content within a Favorite.
type Chapter struct {
	Number    float64 `json:"number" msgpack:"number"`
	Title     *string `json:"title,omitempty" msgpack:"title,omitempty"`
	ChapterID string  `json:"chapterId" msgpack:"chapterId"`
	Source    string  `json:"source" msgpack:"source"`
	Path      *string `json:"path,omitempty" msgpack:"path,omitempty"`
	Language  *string `json:"language,omitempty" msgpack:"language,omitempty"`
	Scan      *string `json:"scan,omitempty" msgpack:"scan,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty" msgpack:"thumbnail,omitempty"`
}

// Language is a selectable content language, as reported by a multi-language
// extension's extension_get_languages export.
type Language struct {
	ID    string `json:"id" msgpack:"id"`
	Label string `json:"label" msgpack:"label"`
}
