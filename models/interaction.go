package models

type InteractionType string

const (
	InteractionTypeView       InteractionType = "view"
	InteractionTypeConversion InteractionType = "conversion"
)

// Interaction is one participant event. Every interaction counts as an
// impression; a conversion additionally counts as a conversion. Metrics
// carries optional named measurements (seconds, pixels, whatever the
// experiment tracks).
type Interaction struct {
	Type    InteractionType    `json:"type"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}
