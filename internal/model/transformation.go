package model

import "time"

// TransformationRecord is the persisted trace of one completed
// transformation request. The full response body is kept as JSON so callers
// can re-fetch results without re-generating.
type TransformationRecord struct {
	ID                int64
	Operation         string
	RequestType       string // cohesive or fragments
	Mode              string // fixed, staggered or fragments
	OriginalTokens    int
	TargetPercentages []int
	VersionsRequested int
	FinalVersions     int
	Passed            bool
	ModelUsed         string
	ResponseBody      []byte
	CreatedAt         time.Time
}
