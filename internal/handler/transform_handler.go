package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianfleck/fragment-editor-api/internal/model"
	"github.com/julianfleck/fragment-editor-api/internal/transform"
)

type TransformEngine interface {
	Transform(ctx context.Context, op transform.Operation, raw map[string]any) (*transform.Response, error)
}

type RecordStore interface {
	SaveTransformation(rec *model.TransformationRecord) error
}

type TransformHandler struct {
	engine    TransformEngine
	store     RecordStore
	modelUsed string
}

func NewTransformHandler(engine TransformEngine, store RecordStore, modelUsed string) *TransformHandler {
	return &TransformHandler{engine: engine, store: store, modelUsed: modelUsed}
}

func (h *TransformHandler) Compress(c *gin.Context) { h.handle(c, transform.OpCompress) }
func (h *TransformHandler) Expand(c *gin.Context)   { h.handle(c, transform.OpExpand) }
func (h *TransformHandler) Fragment(c *gin.Context) { h.handle(c, transform.OpFragment) }
func (h *TransformHandler) Join(c *gin.Context)     { h.handle(c, transform.OpJoin) }

func (h *TransformHandler) handle(c *gin.Context, op transform.Operation) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		slog.Error("invalid request body", "operation", op, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "validation_error",
				"message": "Request body must be a JSON object",
				"status":  http.StatusBadRequest,
			},
		})
		return
	}

	resp, err := h.engine.Transform(c.Request.Context(), op, raw)
	if err != nil {
		var reqErr *transform.RequestError
		if errors.As(err, &reqErr) {
			slog.Warn("transformation rejected", "operation", op, "code", reqErr.Code, "message", reqErr.Message)
			c.JSON(reqErr.Status, gin.H{
				"error": gin.H{
					"code":    reqErr.Code,
					"message": reqErr.Message,
					"details": reqErr.Details,
					"status":  reqErr.Status,
				},
			})
			return
		}

		slog.Error("transformation failed", "operation", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_server_error",
				"message": "An unexpected error occurred",
				"status":  http.StatusInternalServerError,
			},
		})
		return
	}

	h.saveRecord(op, resp)

	c.JSON(http.StatusOK, resp)
}

// saveRecord persists the transformation trace. Persistence is best effort:
// a storage failure never costs the caller their result.
func (h *TransformHandler) saveRecord(op transform.Operation, resp *transform.Response) {
	if h.store == nil {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		slog.Error("error marshaling transformation response", "operation", op, "error", err)
		return
	}

	rec := model.TransformationRecord{
		Operation:         string(op),
		RequestType:       resp.Type,
		Mode:              resp.Metadata.Mode,
		OriginalTokens:    totalOriginalTokens(resp.Metadata.OriginalTokens),
		TargetPercentages: resp.Metadata.TargetPercentages,
		VersionsRequested: resp.Metadata.VersionsRequested,
		FinalVersions:     resp.Metadata.FinalVersions,
		Passed:            resp.Metadata.Validation.Fragments.Passed && resp.Metadata.Validation.Lengths.Passed,
		ModelUsed:         h.modelUsed,
		ResponseBody:      body,
		CreatedAt:         time.Now(),
	}

	if err := h.store.SaveTransformation(&rec); err != nil {
		slog.Error("error saving transformation record", "operation", op, "error", err)
	}
}

func totalOriginalTokens(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case []int:
		total := 0
		for _, n := range v {
			total += n
		}
		return total
	default:
		return 0
	}
}
