package scoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackgenix/fraudscore/internal/features"
	"github.com/hackgenix/fraudscore/internal/idgen"
	"github.com/hackgenix/fraudscore/internal/model"
	"github.com/hackgenix/fraudscore/internal/pagination"
	"github.com/hackgenix/fraudscore/internal/validation"
)

// Broadcaster publishes scored results to live subscribers.
// Satisfied by realtime.Hub; nil disables publishing.
type Broadcaster interface {
	BroadcastResult(result Result)
	BroadcastBatch(batch *Batch)
}

// Handler provides HTTP endpoints for interactive scoring
type Handler struct {
	scorer  *Scorer
	store   Store
	hub     Broadcaster
	maxRows int
}

// NewHandler creates a new scoring handler
func NewHandler(scorer *Scorer, store Store, hub Broadcaster, maxRows int) *Handler {
	return &Handler{
		scorer:  scorer,
		store:   store,
		hub:     hub,
		maxRows: maxRows,
	}
}

// RegisterRoutes sets up scoring routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/score", h.ScoreBatch)
	r.GET("/batches", h.ListBatches)
	r.GET("/schema", h.GetSchema)
}

// ScoreTransaction is one transaction in a score request
type ScoreTransaction struct {
	TransactionID string             `json:"transactionId" binding:"required"`
	Features      map[string]float64 `json:"features"`
}

// ScoreRequest for scoring a set of transactions
type ScoreRequest struct {
	Transactions []ScoreTransaction `json:"transactions" binding:"required"`
}

// ScoreBatch handles POST /v1/score
func (h *Handler) ScoreBatch(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if len(req.Transactions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "empty_batch",
			"message": "At least one transaction is required",
		})
		return
	}
	if len(req.Transactions) > h.maxRows {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "batch_too_large",
			"message": "Batch exceeds the configured row limit",
			"limit":   h.maxRows,
		})
		return
	}

	records := make([]features.Record, len(req.Transactions))
	for i, tx := range req.Transactions {
		id := validation.SanitizeString(tx.TransactionID, validation.MaxIDLength)
		if errs := validation.Validate(
			validation.Required("transactionId", id),
			validation.MaxLength("transactionId", tx.TransactionID, validation.MaxIDLength),
		); len(errs) != 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_transaction",
				"message": errs.Error(),
				"row":     i,
			})
			return
		}

		fields := make(map[string]string, len(tx.Features))
		for name, v := range tx.Features {
			fields[name] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		records[i] = features.Record{ID: id, Fields: fields}
	}

	start := time.Now()
	results, err := h.scorer.Score(records)
	if err != nil {
		status, kind := classifyScoreError(err)
		c.JSON(status, gin.H{
			"error":   kind,
			"message": err.Error(),
		})
		return
	}

	batch := Summarize(idgen.WithPrefix("batch_"), "api", results, time.Since(start))
	if h.store != nil {
		if err := h.store.RecordBatch(c.Request.Context(), batch); err == nil && h.hub != nil {
			h.hub.BroadcastBatch(batch)
		}
	}
	if h.hub != nil {
		for _, r := range results {
			h.hub.BroadcastResult(r)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"batchId": batch.ID,
		"results": results,
	})
}

// ListBatches handles GET /v1/batches with cursor pagination
func (h *Handler) ListBatches(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	before, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_cursor",
			"message": "Invalid pagination cursor",
		})
		return
	}

	// Fetch one extra row to detect whether another page exists.
	batches, err := h.store.ListBatches(c.Request.Context(), limit+1, before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": "Failed to list batches",
		})
		return
	}

	batches, next, hasMore := pagination.ComputePage(batches, limit, func(b *Batch) (time.Time, string) {
		return b.CreatedAt, b.ID
	})

	c.JSON(http.StatusOK, gin.H{
		"batches":    batches,
		"count":      len(batches),
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

// GetSchema handles GET /v1/schema: the feature columns the loaded
// model expects, in training order.
func (h *Handler) GetSchema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": h.scorer.Schema(),
	})
}

// classifyScoreError maps scoring failures to HTTP status and error kind.
func classifyScoreError(err error) (int, string) {
	switch {
	case errors.Is(err, features.ErrSchemaFieldMissing):
		return http.StatusBadRequest, "schema_field_missing"
	case errors.Is(err, model.ErrShapeMismatch):
		return http.StatusBadRequest, "shape_mismatch"
	case errors.Is(err, ErrLengthMismatch):
		return http.StatusInternalServerError, "length_mismatch"
	default:
		return http.StatusInternalServerError, "scoring_failed"
	}
}
