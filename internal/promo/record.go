// Package promo defines the domain types shared by every stage of the
// promo-processing pipeline: the stored record, the structured field set
// extracted from raw promo text, the supported translation languages, and
// the error taxonomy used across provider, store, and pipeline boundaries.
package promo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names produced by the extraction stage. The set is fixed; individual
// fields may be absent from any given record.
const (
	FieldHeadline    = "headline"
	FieldDescription = "description"
	FieldCTA         = "cta"
	FieldStates      = "states"
	FieldPromoType   = "promo_type"
	FieldBetAmount   = "bet_amount"
	FieldBonusAmount = "bonus_amount"
	FieldValidDates  = "valid_dates"
	FieldTerms       = "terms"
	FieldType        = "type"
	FieldSize        = "size"
	FieldPlacement   = "placement"
)

// FieldNames is the ordered list of field names the extractor asks for.
// It drives prompt construction and is the authoritative enumeration of
// the structured field set.
var FieldNames = []string{
	FieldHeadline,
	FieldDescription,
	FieldCTA,
	FieldStates,
	FieldPromoType,
	FieldBetAmount,
	FieldBonusAmount,
	FieldValidDates,
	FieldTerms,
	FieldType,
	FieldSize,
	FieldPlacement,
}

// Fields is the structured summary extracted from a promo text. Values are
// strings or lists of strings as returned by the model; the contract
// guarantees JSON-parseability only, so no stricter typing is imposed.
// Absent keys mean the field was not present in the source text.
type Fields map[string]any

// Headline returns the headline value if it is a non-empty string,
// otherwise the empty string. Used for deduplication and logging.
func (f Fields) Headline() string {
	s, _ := f[FieldHeadline].(string)
	return s
}

// EmbeddingText returns the composite text embedded during batch
// enrichment: headline, description, and promo type joined by spaces.
func (f Fields) EmbeddingText() string {
	headline, _ := f[FieldHeadline].(string)
	description, _ := f[FieldDescription].(string)
	promoType, _ := f[FieldPromoType].(string)
	out := headline + " " + description
	if promoType != "" {
		out += " " + promoType
	}
	return out
}

// Record is one promotional text and everything derived from it. The bson
// layout mirrors the stored document: the structured fields are inlined at
// the top level alongside promoText, template, translations, and embedding.
type Record struct {
	// ID is assigned by the store on insert and immutable afterwards.
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	// PromoText is the original unstructured input, stored verbatim.
	PromoText string `bson:"promoText,omitempty" json:"promoText,omitempty"`

	// Fields holds the extracted structured summary, inlined into the
	// document so each field is a top-level key.
	Fields Fields `bson:",inline" json:"structured,omitempty"`

	// Template is the generated Handlebars banner template.
	Template string `bson:"template,omitempty" json:"template,omitempty"`

	// Translations maps language code (es, fr, zh) to the translated field set.
	Translations map[string]Fields `bson:"translations,omitempty" json:"translations,omitempty"`

	// Embedding is the vector for this record. Its length must match the
	// numDimensions of the store's vector index or similarity search fails.
	Embedding []float32 `bson:"embedding,omitempty" json:"-"`

	// Stages records when each batch enrichment stage completed, so a
	// partially written record is distinguishable from an unprocessed one.
	Stages map[string]time.Time `bson:"stages,omitempty" json:"-"`

	// Score is the similarity score attached to vector search results.
	// Zero on records read outside of a search.
	Score float64 `bson:"score,omitempty" json:"score,omitempty"`

	// InsertedAt is the creation timestamp.
	InsertedAt time.Time `bson:"insertedAt,omitempty" json:"insertedAt,omitempty"`
}
