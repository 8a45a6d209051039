package handler

import "encoding/json"

type TransformationListItem struct {
	ID                int64  `json:"id"`
	Operation         string `json:"operation"`
	Type              string `json:"type"`
	Mode              string `json:"mode"`
	OriginalTokens    int    `json:"original_tokens"`
	TargetPercentages []int  `json:"target_percentages"`
	VersionsRequested int    `json:"versions_requested"`
	FinalVersions     int    `json:"final_versions"`
	Passed            bool   `json:"passed"`
	ModelUsed         string `json:"model_used"`
	CreatedAt         string `json:"created_at"`
}

type TransformationListResponse struct {
	Transformations []TransformationListItem `json:"transformations"`
	Total           int                      `json:"total"`
	Limit           int                      `json:"limit"`
	Offset          int                      `json:"offset"`
}

type TransformationDetailResponse struct {
	TransformationListItem
	Response json.RawMessage `json:"response"`
}
