package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingField = errors.New("missing required field")

// Sentence is an ordered sequence of tokens.
type Sentence []string

// Text joins the tokens with single spaces.
func (s Sentence) Text() string {
	return strings.Join(s, " ")
}

// Paragraph is an ordered sequence of sentences.
type Paragraph []Sentence

func (p Paragraph) Sentences() []Sentence {
	return p
}

// Text joins the sentence texts with single spaces and trims the result.
func (p Paragraph) Text() string {
	texts := make([]string, 0, len(p))
	for _, s := range p {
		texts = append(texts, s.Text())
	}

	return strings.TrimSpace(strings.Join(texts, " "))
}

// Document is the paragraph → sentence → token structure used by the
// dataset for both article bodies and abstractive summaries.
type Document []Paragraph

func (d Document) Paragraphs() []Paragraph {
	return d
}

func (d Document) SentenceCount() int {
	count := 0
	for _, p := range d {
		count += len(p)
	}

	return count
}

// Labels holds one row of extractive importance flags per paragraph.
type Labels [][]bool

type Article struct {
	ID        string
	Category  string
	Source    string
	SourceURL string
}

// RawArticle is one dataset line as it appears in a training shard.
type RawArticle struct {
	Article
	Paragraphs Document
	Summary    Document
	GoldLabels Labels
}

type rawArticleJSON struct {
	ID         *string   `json:"id"`
	Category   *string   `json:"category"`
	Source     *string   `json:"source"`
	SourceURL  *string   `json:"source_url"`
	Paragraphs *Document `json:"paragraphs"`
	Summary    *Document `json:"summary"`
	GoldLabels *Labels   `json:"gold_labels"`
}

// UnmarshalJSON requires every field to be present so that a malformed
// record fails at the load boundary instead of deep inside scoring.
func (a *RawArticle) UnmarshalJSON(data []byte) error {
	var raw rawArticleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.ID == nil {
		missing = append(missing, "id")
	}
	if raw.Category == nil {
		missing = append(missing, "category")
	}
	if raw.Source == nil {
		missing = append(missing, "source")
	}
	if raw.SourceURL == nil {
		missing = append(missing, "source_url")
	}
	if raw.Paragraphs == nil {
		missing = append(missing, "paragraphs")
	}
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.GoldLabels == nil {
		missing = append(missing, "gold_labels")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	*a = RawArticle{
		Article: Article{
			ID:        *raw.ID,
			Category:  *raw.Category,
			Source:    *raw.Source,
			SourceURL: *raw.SourceURL,
		},
		Paragraphs: *raw.Paragraphs,
		Summary:    *raw.Summary,
		GoldLabels: *raw.GoldLabels,
	}

	return nil
}

func (a RawArticle) MarshalJSON() ([]byte, error) {
	return json.Marshal(rawArticleJSON{
		ID:         &a.ID,
		Category:   &a.Category,
		Source:     &a.Source,
		SourceURL:  &a.SourceURL,
		Paragraphs: &a.Paragraphs,
		Summary:    &a.Summary,
		GoldLabels: &a.GoldLabels,
	})
}

// NormalizedRecord is the flat form of a RawArticle.
type NormalizedRecord struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Source          string `json:"source"`
	SourceURL       string `json:"source_url"`
	FullText        string `json:"full_text"`
	GoldSummary     string `json:"gold_summary"`
	OriginalSummary string `json:"original_summary"`
}

// ScoredRecord is a NormalizedRecord with the model output attached.
// An empty GeneratedSummary marks a failed generation.
type ScoredRecord struct {
	NormalizedRecord

	GeneratedSummary string `json:"generated_summary"`
	GenerationError  string `json:"generation_error,omitempty"`
}

func (r ScoredRecord) Generated() bool {
	return strings.TrimSpace(r.GeneratedSummary) != ""
}

type ReferenceKind string

const (
	// ReferenceAbstractive scores against the human-written summary.
	ReferenceAbstractive ReferenceKind = "abstractive"
	// ReferenceExtractive scores against the label-selected sentences.
	ReferenceExtractive ReferenceKind = "extractive"
)

func (k ReferenceKind) Valid() bool {
	return k == ReferenceAbstractive || k == ReferenceExtractive
}

// Reference picks the reference summary the record is scored against.
func (r ScoredRecord) Reference(kind ReferenceKind) string {
	if kind == ReferenceExtractive {
		return r.GoldSummary
	}

	return r.OriginalSummary
}
