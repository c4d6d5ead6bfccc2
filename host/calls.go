package host

import (
	"context"

	"github.com/mangayouknow/extcore/abi"
	"github.com/mangayouknow/extcore/domain"
	"github.com/mangayouknow/extcore/wireformat"
)

// SearchParams is the named-field payload sent to extension_search.
type SearchParams struct {
	Query string `msgpack:"query"`
	Page  int    `msgpack:"page"`
}

// ChaptersParams is the named-field payload sent to extension_get_chapters.
type ChaptersParams struct {
	SourceID string `msgpack:"sourceId"`
	Language string `msgpack:"language,omitempty"`
}

// ChapterImagesParams is the payload sent to extension_get_chapter_images.
type ChapterImagesParams struct {
	ChapterID string `msgpack:"chapterId"`
}

// LanguagesParams is the payload sent to extension_get_languages.
type LanguagesParams struct {
	SourceID string `msgpack:"sourceId"`
}

// Search calls extension_search on id and decodes the result into Favorites.
func (h *Host) Search(ctx context.Context, id string, params SearchParams) ([]domain.Favorite, error) {
	if err := h.requireLoaded(id); err != nil {
		return nil, err
	}
	var out []domain.Favorite
	if err := h.invoke(ctx, id, abi.SearchExport, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetChapters calls extension_get_chapters on id and decodes the result.
func (h *Host) GetChapters(ctx context.Context, id string, params ChaptersParams) ([]domain.Chapter, error) {
	if err := h.requireLoaded(id); err != nil {
		return nil, err
	}
	var out []domain.Chapter
	if err := h.invoke(ctx, id, abi.GetChaptersExport, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetChapterImages calls extension_get_chapter_images on id and decodes the
// result into a list of image URLs.
func (h *Host) GetChapterImages(ctx context.Context, id string, params ChapterImagesParams) ([]string, error) {
	if err := h.requireLoaded(id); err != nil {
		return nil, err
	}
	var out []string
	if err := h.invoke(ctx, id, abi.GetChapterImagesExport, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLanguages calls the optional extension_get_languages export. Only
// meaningful when the extension's manifest declares IsMultiLanguage.
func (h *Host) GetLanguages(ctx context.Context, id string, params LanguagesParams) ([]domain.Language, error) {
	if err := h.requireLoaded(id); err != nil {
		return nil, err
	}
	var out []domain.Language
	if err := h.invoke(ctx, id, abi.GetLanguagesExport, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// invoke encodes params as named-field MessagePack, passes the raw bytes to
// the executor (which writes them into guest memory and supplies the length
// as a separate i32 argument — no in-band framing needed on the way in), and
// decodes the result the executor already stripped its length prefix from.
func (h *Host) invoke(ctx context.Context, id, export string, params any, out any) error {
	encoded, err := wireformat.Encode(params)
	if err != nil {
		return err
	}

	result, err := h.executor.Execute(ctx, id, export, encoded)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return wireformat.Decode(result, out)
}
