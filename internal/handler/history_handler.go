package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianfleck/fragment-editor-api/internal/model"
)

type HistoryStore interface {
	GetTransformations(limit, offset int) ([]model.TransformationRecord, error)
	GetTransformationTotal() (int, error)
	GetTransformationByID(id int64) (*model.TransformationRecord, error)
}

type HistoryHandler struct {
	repository HistoryStore
}

func NewHistoryHandler(repository HistoryStore) *HistoryHandler {
	return &HistoryHandler{repository: repository}
}

func toListItem(rec model.TransformationRecord) TransformationListItem {
	return TransformationListItem{
		ID:                rec.ID,
		Operation:         rec.Operation,
		Type:              rec.RequestType,
		Mode:              rec.Mode,
		OriginalTokens:    rec.OriginalTokens,
		TargetPercentages: rec.TargetPercentages,
		VersionsRequested: rec.VersionsRequested,
		FinalVersions:     rec.FinalVersions,
		Passed:            rec.Passed,
		ModelUsed:         rec.ModelUsed,
		CreatedAt:         rec.CreatedAt.Format(time.RFC3339),
	}
}

func (h *HistoryHandler) GetTransformations(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	records, err := h.repository.GetTransformations(limit, offset)
	if err != nil {
		slog.Error("error fetching transformations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetTransformationTotal()
	if err != nil {
		slog.Error("error fetching transformation total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]TransformationListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, toListItem(rec))
	}

	c.JSON(http.StatusOK, TransformationListResponse{
		Transformations: items,
		Total:           total,
		Limit:           limit,
		Offset:          offset,
	})
}

func (h *HistoryHandler) GetTransformation(c *gin.Context) {
	id := c.Param("id")

	recordID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.Error("invalid transformation id", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transformation id"})
		return
	}

	record, err := h.repository.GetTransformationByID(recordID)
	if err != nil {
		slog.Error("error fetching transformation", "error", err, "transformation_id", recordID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transformation not found"})
		return
	}

	c.JSON(http.StatusOK, TransformationDetailResponse{
		TransformationListItem: toListItem(*record),
		Response:               record.ResponseBody,
	})
}

func (h *HistoryHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.GetTransformationTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	paramValue := c.Query(name)

	if paramValue == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(paramValue)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", paramValue, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
