package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_ArticleSchema(t *testing.T) {
	def, err := NewIndex("idx:articles").
		Prefix("newsai:article:").
		Tag("category").
		TagWithOpts("tags", ",", false).
		Tag("source_name").
		Numeric("published_ts").
		VectorHNSW("vector", 1024, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if def.Name != "idx:articles" {
		t.Errorf("Name = %q, want %q", def.Name, "idx:articles")
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "newsai:article:" {
		t.Errorf("Prefixes = %v, want [newsai:article:]", def.Prefixes)
	}
	if len(def.Fields) != 5 {
		t.Fatalf("got %d fields, want 5", len(def.Fields))
	}

	vec := def.Fields[4]
	if vec.Type != IndexFieldVector || vec.VectorAlgo != VectorHNSW {
		t.Errorf("vector field = %+v, want HNSW vector", vec)
	}
	if vec.VectorDim != 1024 || vec.VectorDistance != DistanceCosine {
		t.Errorf("vector dim/distance = %d/%s, want 1024/COSINE", vec.VectorDim, vec.VectorDistance)
	}

	tags := def.Fields[1]
	if tags.TagSeparator != "," {
		t.Errorf("tags separator = %q, want %q", tags.TagSeparator, ",")
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{
			name:    "empty name",
			builder: NewIndex("").Tag("category"),
			wantErr: "index name is required",
		},
		{
			name:    "invalid name characters",
			builder: NewIndex("idx articles").Tag("category"),
			wantErr: "invalid characters",
		},
		{
			name:    "no fields",
			builder: NewIndex("idx:articles"),
			wantErr: "at least one field",
		},
		{
			name:    "duplicate field",
			builder: NewIndex("idx:articles").Tag("category").Tag("category"),
			wantErr: "duplicate field",
		},
		{
			name:    "vector without dim",
			builder: NewIndex("idx:articles").VectorHNSW("vector", 0, DistanceCosine, 0, 0),
			wantErr: "positive DIM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Build() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	def := NewIndex("idx:articles").
		Prefix("newsai:article:").
		Tag("category").
		VectorFlat("vector", 4, DistanceL2, 0).
		MustBuild()

	s := def.String()
	for _, want := range []string{"FT.CREATE", "idx:articles", "ON HASH", "PREFIX newsai:article:", "category TAG", "vector VECTOR FLAT"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"idx:articles", true},
		{"idx_articles-v2", true},
		{"", false},
		{"idx articles", false},
		{"idx/articles", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.in); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
