package store

// RAGResult is one ranked passage returned by the retrieval corpus.
// SafetyWarnings holds the banned chemical names found in the passage for the
// request crop; it is filled by the safety annotation step, never by retrieval.
type RAGResult struct {
	PassageText     string   `json:"passage_text"`
	SourceID        string   `json:"source_id"`
	SimilarityScore float64  `json:"similarity_score"`
	Crop            string   `json:"crop"`
	SafetyWarnings  []string `json:"safety_warnings,omitempty"`
}
