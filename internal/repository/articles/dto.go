package articles

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
)

// Record is an indexed article: its metadata plus the embedding vector.
type Record struct {
	Article        domain.Article
	ContentPreview string
	Vector         []float32
}

// Hit is a search result with its similarity score.
type Hit struct {
	Record
	Score float64
}

// Hash field names. The vector field is indexed for KNN, the tag and
// numeric fields for pre-filtering.
const (
	fieldTitle       = "title"
	fieldLink        = "link"
	fieldSummary     = "summary"
	fieldAISummary   = "ai_summary"
	fieldCategory    = "category"
	fieldTags        = "tags"
	fieldSourceName  = "source_name"
	fieldSourceFeed  = "source_feed"
	fieldAuthor      = "author"
	fieldSlug        = "slug"
	fieldPreview     = "content_preview"
	fieldPublishedTS = "published_ts"
	fieldFetchedAt   = "fetched_at"
	fieldVector      = "vector"
)

// metaFields are the hash fields returned by searches; the vector is
// excluded from result sets.
var metaFields = []string{
	fieldTitle, fieldLink, fieldSummary, fieldAISummary,
	fieldCategory, fieldTags, fieldSourceName, fieldSourceFeed,
	fieldAuthor, fieldSlug, fieldPreview, fieldPublishedTS, fieldFetchedAt,
}

func recordToFields(rec Record) map[string]string {
	a := rec.Article
	fields := map[string]string{
		fieldTitle:      a.Title,
		fieldLink:       a.Link,
		fieldSummary:    a.Summary,
		fieldAISummary:  a.AISummary,
		fieldCategory:   a.Category,
		fieldTags:       strings.Join(a.Tags, ","),
		fieldSourceName: a.SourceName,
		fieldSourceFeed: a.SourceFeed,
		fieldAuthor:     a.Author,
		fieldSlug:       a.Slug,
		fieldPreview:    rec.ContentPreview,
		fieldVector:     encodeVector(rec.Vector),
	}
	if !a.Published.IsZero() {
		fields[fieldPublishedTS] = strconv.FormatInt(a.Published.Unix(), 10)
	}
	if !a.FetchedAt.IsZero() {
		fields[fieldFetchedAt] = a.FetchedAt.UTC().Format(time.RFC3339)
	}
	return fields
}

func fieldsToRecord(id string, fields map[string]string) Record {
	a := domain.Article{
		ID:         id,
		Title:      fields[fieldTitle],
		Link:       fields[fieldLink],
		Summary:    fields[fieldSummary],
		AISummary:  fields[fieldAISummary],
		Category:   fields[fieldCategory],
		SourceName: fields[fieldSourceName],
		SourceFeed: fields[fieldSourceFeed],
		Author:     fields[fieldAuthor],
		Slug:       fields[fieldSlug],
	}
	if raw := fields[fieldTags]; raw != "" {
		a.Tags = strings.Split(raw, ",")
	}
	if raw := fields[fieldPublishedTS]; raw != "" {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			a.Published = time.Unix(ts, 0).UTC()
		}
	}
	if raw := fields[fieldFetchedAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			a.FetchedAt = t
		}
	}

	rec := Record{
		Article:        a,
		ContentPreview: fields[fieldPreview],
	}
	if raw, ok := fields[fieldVector]; ok {
		rec.Vector = decodeVector(raw)
	}
	return rec
}

// encodeVector packs float32 values as little-endian bytes, the layout
// FT.SEARCH expects for vector BLOBs.
func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func decodeVector(s string) []float32 {
	if len(s) < 4 {
		return nil
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v
}
