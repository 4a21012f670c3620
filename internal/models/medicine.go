// file: internal/models/medicine.go
// version: 1.1.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8f

package models

// Medicine represents one catalog entry. Records are loaded at import time
// and treated as read-only by the matching core.
type Medicine struct {
	ID               string  `json:"id" db:"id"`
	SourceID         string  `json:"source_id" db:"source_id"`
	ManufacturerName string  `json:"manufacturer_name" db:"manufacturer_name"`
	Name             string  `json:"name" db:"name"`
	RxRequired       *string `json:"rx_required" db:"rx_required"`
	ShortComposition *string `json:"short_composition" db:"short_composition"`
	Slug             *string `json:"slug" db:"slug"`
	BrandName        *string `json:"brand_name" db:"brand_name"`
	Power            *string `json:"power" db:"power"`
	Category         *string `json:"category" db:"category"`
	MgID             *int    `json:"mg_id" db:"mg_id"`
	InternalID       *int    `json:"internal_id" db:"internal_id"`
}

// MedicineView is the read-only projection returned by the API. Matches hold
// a copied view, never a live store reference.
type MedicineView struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	BrandName        *string `json:"brand_name"`
	ManufacturerName string  `json:"manufacturer_name"`
	ShortComposition *string `json:"short_composition"`
	Category         *string `json:"category"`
	RxRequired       *string `json:"rx_required"`
}

// View returns the API projection of a medicine. Pointer fields are copied so
// later catalog mutation cannot reach into an already-returned match.
func (m *Medicine) View() MedicineView {
	return MedicineView{
		ID:               m.ID,
		Name:             m.Name,
		BrandName:        copyStringPtr(m.BrandName),
		ManufacturerName: m.ManufacturerName,
		ShortComposition: copyStringPtr(m.ShortComposition),
		Category:         copyStringPtr(m.Category),
		RxRequired:       copyStringPtr(m.RxRequired),
	}
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ScoredMedicine pairs a medicine with the store's native relevance score
// from ranked full-text retrieval.
type ScoredMedicine struct {
	Medicine Medicine
	Score    float64
}

// RecognitionCandidate is one text hypothesis from the handwriting
// recognizer, ordered by the recognizer from most to least confident.
type RecognitionCandidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether a candidate can participate in reconciliation.
// Malformed candidates are skipped, not fatal.
func (c RecognitionCandidate) Valid() bool {
	return c.Text != "" && c.Confidence >= 0 && c.Confidence <= 1
}

// MatchedField values for MedicineMatch.
const (
	MatchedFieldName  = "name"
	MatchedFieldBrand = "brand_name"
)

// MedicineMatch is a scored pairing of recognized text to a catalog entry.
type MedicineMatch struct {
	Medicine     MedicineView `json:"medicine"`
	MatchScore   float64      `json:"matchScore"`
	MatchedField string       `json:"matchedField"`
}

// StrokePoint is a single sampled pen position.
type StrokePoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Time int64   `json:"time"`
}

// RecognizeRequest is the handwriting submission payload.
type RecognizeRequest struct {
	Strokes [][]StrokePoint `json:"strokes" binding:"required"`
}

// RecognizeResponse carries the recognizer candidates alongside the ranked
// catalog matches.
type RecognizeResponse struct {
	Candidates []RecognitionCandidate `json:"candidates"`
	Matches    []MedicineMatch        `json:"matches"`
	Meta       ResponseMeta           `json:"_meta"`
}

// SearchResponse is the manual search payload.
type SearchResponse struct {
	Medicines []MedicineView `json:"medicines"`
	Meta      ResponseMeta   `json:"_meta"`
}

// ResponseMeta carries request timing and result info.
type ResponseMeta struct {
	DurationMS int64  `json:"duration"`
	Count      int    `json:"count,omitempty"`
	Query      string `json:"query,omitempty"`
}

// CatalogStats holds aggregate catalog statistics.
type CatalogStats struct {
	TotalMedicines      int `json:"totalMedicines"`
	TotalManufacturers  int `json:"totalManufacturers"`
	TotalCategories     int `json:"totalCategories"`
	RecognitionAccuracy int `json:"recognitionAccuracy"`
}
