package model

// EvidenceRecord is a single study or reference returned by a validator source
type EvidenceRecord struct {
	SourceName      string        `json:"source_name"`         // Validator that produced the record (e.g. "pubmed")
	Title           string        `json:"title,omitempty"`     // Study title
	URL             string        `json:"url,omitempty"`       // Link to the study
	Authority       AuthorityTier `json:"authority,omitempty"` // Publisher authority classification
	SupportsClaim   bool          `json:"supports_claim"`      // Whether the study reads as supporting the claim
	ConfidenceScore float64       `json:"confidence_score"`    // Confidence of the producing source (0-100)
	Error           string        `json:"error,omitempty"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Peer-reviewed journals, government health agencies
	TierSecondary AuthorityTier = 2 // Preprint servers, reputable medical media
	TierTertiary  AuthorityTier = 3 // Blogs, wellness sites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// SourceReport records the outcome of one validator call
type SourceReport struct {
	Name            string           `json:"name"`
	ConfidenceScore float64          `json:"confidence_score"`
	SupportsClaim   bool             `json:"supports_claim"`
	Studies         []EvidenceRecord `json:"studies,omitempty"`
	Error           string           `json:"error,omitempty"` // Set when the call failed; the report is then ignored for scoring
}

// Failed reports whether the validator call failed
func (r SourceReport) Failed() bool {
	return r.Error != ""
}

// ConsensusStrength summarizes agreement across evidence records
type ConsensusStrength string

const (
	ConsensusInsufficient ConsensusStrength = "Insufficient Evidence"
	ConsensusLimited      ConsensusStrength = "Limited Support"
	ConsensusMixed        ConsensusStrength = "Mixed Evidence"
	ConsensusModerate     ConsensusStrength = "Moderate Consensus"
	ConsensusStrong       ConsensusStrength = "Strong Consensus"
)

// ValidationResult is the aggregated judgment of all validator sources for one claim
type ValidationResult struct {
	ValidationScore    float64           `json:"validation_score"` // Mean source confidence (0-100), 50 when no source answered
	ConsensusStrength  ConsensusStrength `json:"consensus_strength"`
	SupportingEvidence []EvidenceRecord  `json:"supporting_evidence"` // Studies from every successful source
	Sources            []SourceReport    `json:"sources,omitempty"`   // Per-source outcomes, failures included
}

// SupportingCount returns how many evidence records support the claim
func (v ValidationResult) SupportingCount() int {
	count := 0
	for _, r := range v.SupportingEvidence {
		if r.SupportsClaim {
			count++
		}
	}
	return count
}
