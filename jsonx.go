package aardict

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in encoding/json replacement, the idiom the ecosystem uses
// to adopt json-iterator (see rpcpool-yellowstone-faithful's go.mod, which
// pulls in the same package for its own hot-path JSON decoding).
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// aarMetadata is the JSON object embedded in an aar file's header (spec.md
// §4.2, §6). Timestamp is kept as raw bytes since the format only requires
// it be equatable across volumes, not interpreted.
type aarMetadata struct {
	Index1Offset    int64               `json:"index1_offset"`
	Index2Offset    int64               `json:"index2_offset"`
	IndexCount      int64               `json:"index_count"`
	ArticleCount    int64               `json:"article_count"`
	ArticleOffset   int64               `json:"article_offset"`
	FileCount       int64               `json:"file_count"`
	Timestamp       jsoniter.RawMessage `json:"timestamp"`
	IndexLanguage   string              `json:"index_language"`
	ArticleLanguage string              `json:"article_language"`
	Title           string              `json:"title"`
	Version         string              `json:"aarddict_version"`
	Description     string              `json:"description"`
	Copyright       string              `json:"copyright"`
}

// requiredPrimaryAarMetadataKeys lists the JSON fields spec.md §4.2 requires
// to be present on the primary (volume 0) file, independent of whatever zero
// value they might decode to.
var requiredPrimaryAarMetadataKeys = []string{
	"index1_offset", "index2_offset", "index_count", "article_count",
	"article_offset", "file_count", "timestamp",
}

// requiredVolumeAarMetadataKeys lists the JSON fields a continuation volume
// (file_no >= 1) is required to carry. original_source/aarddict/dictionary.py
// only ever reads article_offset and timestamp off a volume's metadata
// (get_file_metadata), so a minimal continuation volume that omits the
// index-offset keys is still valid and must not be rejected.
var requiredVolumeAarMetadataKeys = []string{
	"article_offset", "timestamp",
}

func decodeAarMetadata(raw []byte, primary bool) (aarMetadata, error) {
	var generic map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return aarMetadata{}, fmt.Errorf("metadata is not a JSON object: %w", err)
	}

	required := requiredVolumeAarMetadataKeys
	if primary {
		required = requiredPrimaryAarMetadataKeys
	}
	for _, key := range required {
		if _, ok := generic[key]; !ok {
			return aarMetadata{}, fmt.Errorf("metadata missing required field %q", key)
		}
	}

	var meta aarMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return aarMetadata{}, fmt.Errorf("malformed metadata: %w", err)
	}
	return meta, nil
}

// decodeAarArticlePayload decodes the JSON array [text, tags] produced by
// decompressing an aar article, where each tag is itself [name, start, end,
// attributes] (spec.md §4.2).
func decodeAarArticlePayload(data []byte) (string, []Tag, error) {
	var outer []jsoniter.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return "", nil, err
	}
	if len(outer) != 2 {
		return "", nil, fmt.Errorf("expected [text, tags], got %d elements", len(outer))
	}

	var text string
	if err := json.Unmarshal(outer[0], &text); err != nil {
		return "", nil, err
	}

	var rawTags []jsoniter.RawMessage
	if err := json.Unmarshal(outer[1], &rawTags); err != nil {
		return "", nil, err
	}

	tags := make([]Tag, 0, len(rawTags))
	for _, rt := range rawTags {
		var parts []jsoniter.RawMessage
		if err := json.Unmarshal(rt, &parts); err != nil {
			return "", nil, err
		}
		if len(parts) != 4 {
			return "", nil, fmt.Errorf("malformed tag: expected 4 elements, got %d", len(parts))
		}

		var name string
		var start, end int
		attrs := map[string]string{}
		if err := json.Unmarshal(parts[0], &name); err != nil {
			return "", nil, err
		}
		if err := json.Unmarshal(parts[1], &start); err != nil {
			return "", nil, err
		}
		if err := json.Unmarshal(parts[2], &end); err != nil {
			return "", nil, err
		}
		_ = json.Unmarshal(parts[3], &attrs) // attributes are optional; default to empty

		tags = append(tags, Tag{Name: name, Start: start, End: end, Attributes: attrs})
	}

	return text, tags, nil
}

func toArticle(raw []byte, ref DictionaryRef) Article {
	text, tags, err := decodeAarArticlePayload(raw)
	if err != nil {
		return Article{Text: string(raw), Dictionary: ref}
	}
	return Article{Text: text, Tags: tags, Dictionary: ref}
}
