package models

// Quote is an attributed excerpt supporting a record.
type Quote struct {
	Text        string  `json:"text"`
	Speaker     *string `json:"speaker,omitempty"`
	SpeakerRole *string `json:"speaker_role,omitempty"`
	Date        *string `json:"date,omitempty"`
	SourceID    *ID     `json:"source_id,omitempty"`
}

type Commitment struct {
	ID             ID                `json:"id"`
	ProfileID      ID                `json:"profile_id"`
	CommitmentName string            `json:"commitment_name"`
	CommitmentType *string           `json:"commitment_type"`
	Description    *string           `json:"description"`
	Status         *CommitmentStatus `json:"status"`
	TargetDate     *string           `json:"target_date"`
	AnnouncedDate  *string           `json:"announced_date"`
	Quotes         []Quote           `json:"quotes,omitempty"`
	ProvenanceIDs  []ID              `json:"provenance_ids,omitempty"`
}

type Controversy struct {
	ID            ID                 `json:"id"`
	ProfileID     ID                 `json:"profile_id"`
	Title         string             `json:"title"`
	Description   *string            `json:"description"`
	Date          *string            `json:"date"`
	Status        *ControversyStatus `json:"status"`
	Severity      *string            `json:"severity"`
	Quotes        []Quote            `json:"quotes,omitempty"`
	ProvenanceIDs []ID               `json:"provenance_ids,omitempty"`
}

type Event struct {
	ID            ID      `json:"id"`
	ProfileID     ID      `json:"profile_id"`
	EventType     *string `json:"event_type"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	EventDate     *string `json:"event_date"`
	Impact        *string `json:"impact"`
	Quotes        []Quote `json:"quotes,omitempty"`
	ProvenanceIDs []ID    `json:"provenance_ids,omitempty"`
}

// DataSource is a document the research cites.
type DataSource struct {
	ID              ID      `json:"id"`
	ProfileID       ID      `json:"profile_id"`
	SourceType      *string `json:"source_type"`
	Title           *string `json:"title"`
	URL             *string `json:"url"`
	Publisher       *string `json:"publisher"`
	PublicationDate *string `json:"publication_date"`
	Reliability     *string `json:"reliability"`
}

type SupplierDiversity struct {
	ID              ID       `json:"id"`
	ProfileID       ID       `json:"profile_id"`
	ProgramExists   *bool    `json:"program_exists"`
	SpendAmountUSD  *float64 `json:"spend_amount_usd"`
	SpendPercentage *float64 `json:"spend_percentage"`
	ReportingYear   *int     `json:"reporting_year"`
	Status          *string  `json:"status"`
	Certifications  []string `json:"certifications,omitempty"`
	Quotes          []Quote  `json:"quotes,omitempty"`
	ProvenanceIDs   []ID     `json:"provenance_ids,omitempty"`
}

type CDORole struct {
	ID            ID      `json:"id"`
	ProfileID     ID      `json:"profile_id"`
	Exists        *bool   `json:"exists"`
	Name          *string `json:"name"`
	Title         *string `json:"title"`
	ReportsTo     *string `json:"reports_to"`
	Status        *string `json:"status"`
	Quotes        []Quote `json:"quotes,omitempty"`
	ProvenanceIDs []ID    `json:"provenance_ids,omitempty"`
}

type RiskAssessment struct {
	ID             ID         `json:"id"`
	ProfileID      ID         `json:"profile_id"`
	RiskLevel      *RiskLevel `json:"risk_level"`
	RiskScore      *float64   `json:"risk_score"`
	LegalRisk      *string    `json:"legal_risk"`
	ReputationRisk *string    `json:"reputational_risk"`
	Summary        *string    `json:"summary"`
	Quotes         []Quote    `json:"quotes,omitempty"`
	ProvenanceIDs  []ID       `json:"provenance_ids,omitempty"`
}

// AIContext is model-generated commentary attached to a profile.
type AIContext struct {
	ID                    ID       `json:"id"`
	ProfileID             ID       `json:"profile_id"`
	Summary               *string  `json:"summary"`
	KeyInsights           []string `json:"key_insights"`
	StrategicImplications []string `json:"strategic_implications"`
	Recommendation        *string  `json:"recommendation"`
	ProvenanceIDs         []ID     `json:"provenance_ids,omitempty"`
}

type DEIPosture struct {
	ID                       ID         `json:"id"`
	ProfileID                ID         `json:"profile_id"`
	Status                   *DEIStatus `json:"status"`
	CommitmentStrengthRating *float64   `json:"commitment_strength_rating"`
	TransparencyRating       *float64   `json:"transparency_rating"`
	Quotes                   []Quote    `json:"quotes,omitempty"`
	ProvenanceIDs            []ID       `json:"provenance_ids,omitempty"`
}
