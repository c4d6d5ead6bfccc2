package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/mangayouknow/extcore/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestDescriptorFromManifest(t *testing.T) {
	m := domain.ExtensionManifest{
		Name:          "mangadex",
		Version:       "1.2.0",
		Language:      "en",
		ExtensionType: "manga",
		Exports:       domain.ExtensionExports{Search: true, GetChapters: true},
	}

	d := domain.DescriptorFromManifest("mangadex", m)
	assert.Equal(t, "mangadex", d.ID)
	assert.Equal(t, "1.2.0", d.Version)
	assert.True(t, d.Search)
	assert.True(t, d.GetChapters)
	assert.False(t, d.GetChapterImages)
	assert.False(t, d.Loaded, "a bare projection carries no registry state")
}

func TestBoolOrStringJSON(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"false"`, false},
	}
	for _, c := range cases {
		var b domain.BoolOrString
		require.NoError(t, json.Unmarshal([]byte(c.in), &b), "in=%s", c.in)
		assert.Equal(t, c.want, b.Value, "in=%s", c.in)
	}

	var b domain.BoolOrString
	assert.Error(t, json.Unmarshal([]byte(`42`), &b))

	out, err := json.Marshal(domain.BoolOrString{Value: true})
	require.NoError(t, err)
	assert.Equal(t, `true`, string(out))
}

func TestBoolOrStringMsgpackRoundTrip(t *testing.T) {
	b := domain.BoolOrString{Value: true}
	encoded, err := msgpack.Marshal(&b)
	require.NoError(t, err)

	var decoded domain.BoolOrString
	require.NoError(t, msgpack.Unmarshal(encoded, &decoded))
	assert.True(t, decoded.Value)
}

func TestFavoriteMsgpackNamedFields(t *testing.T) {
	fav := domain.Favorite{
		ID:       "abc",
		Name:     "One Piece",
		Source:   "mangadex",
		SourceID: "op-1",
		Kind:     domain.ContentTypeManga,
	}

	encoded, err := msgpack.Marshal(fav)
	require.NoError(t, err)

	// Named-field encoding means a plain map decode sees the tag names.
	var asMap map[string]any
	require.NoError(t, msgpack.Unmarshal(encoded, &asMap))
	assert.Equal(t, "One Piece", asMap["name"])
	assert.Equal(t, "mangadex", asMap["source"])
	assert.Contains(t, asMap, "sourceId")
}
