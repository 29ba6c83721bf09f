package model

import "time"

// AnalysisVerdict is the pipeline's final output for a claim
type AnalysisVerdict struct {
	Category           Category           `json:"category"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	TrustScore         float64            `json:"trust_score"`
	ScientificEvidence []EvidenceRecord   `json:"scientific_evidence"`
}

// Analysis is what an AI scoring service returns for a claim
type Analysis struct {
	Category           Category           `json:"category"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	TrustScore         float64            `json:"trust_score"`
	ScientificEvidence []string           `json:"scientific_evidence,omitempty"`
	Provider           string             `json:"provider,omitempty"`
}

// ScoredClaim pairs a claim text with its verdict and the evidence used to reach it
type ScoredClaim struct {
	Claim      string           `json:"claim"`
	Verdict    AnalysisVerdict  `json:"verdict"`
	Validation ValidationResult `json:"journal_validation"`
	Fallback   bool             `json:"fallback"`          // True when the AI service failed and the keyword classifier was used
	Pattern    string           `json:"pattern,omitempty"` // Extraction template, when the claim was extracted from raw text
	ScoredAt   time.Time        `json:"processed_at"`
}
