package dto

type BannedChemicalResponse struct {
	ChemicalName string   `json:"chemical_name"`
	Status       string   `json:"status"`
	Reason       string   `json:"reason"`
	Aliases      []string `json:"aliases,omitempty"`
}

type CropSafetyResponse struct {
	Crop                  string                   `json:"crop"`
	Chemicals             []BannedChemicalResponse `json:"chemicals"`
	ComplianceInstruction string                   `json:"compliance_instruction"`
}

type AdvisoryRecordResponse struct {
	RequestID string   `json:"request_id"`
	UserID    string   `json:"user_id"`
	Crop      string   `json:"crop"`
	District  string   `json:"district"`
	Path      string   `json:"path"`
	Outcome   string   `json:"outcome"`
	Removed   []string `json:"removed"`
	Delivered bool     `json:"delivered"`
	CreatedAt string   `json:"created_at"`
}

type AdvisoryListRequest struct {
	Crop    string `query:"crop"`
	UserID  string `query:"user_id"`
	Since   string `query:"since" validate:"omitempty,datetime=2006-01-02"`
	Outcome string `query:"outcome" validate:"omitempty,oneof=answered redirect contact retry"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=200"`
}
