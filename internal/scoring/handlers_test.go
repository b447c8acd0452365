package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*gin.Engine, *MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	handler := NewHandler(NewScorer(passthroughModel()), store, nil, 100)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/v1"))
	return r, store
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestScoreBatch_Success(t *testing.T) {
	r, store := testRouter(t)

	w := postJSON(t, r, "/v1/score", ScoreRequest{
		Transactions: []ScoreTransaction{
			{TransactionID: "tx1", Features: map[string]float64{"Amount": 0.2}},
			{TransactionID: "tx2", Features: map[string]float64{"Amount": 0.8}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		BatchID string   `json:"batchId"`
		Results []Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "tx1", resp.Results[0].TransactionID)
	assert.Equal(t, 0, resp.Results[0].FraudFlag)
	assert.Equal(t, RiskLow, resp.Results[0].RiskLevel)
	assert.Equal(t, "tx2", resp.Results[1].TransactionID)
	assert.Equal(t, 1, resp.Results[1].FraudFlag)
	assert.Equal(t, RiskHigh, resp.Results[1].RiskLevel)
	assert.Equal(t, ReasonModelPrediction, resp.Results[0].Reason)

	// Batch audit row recorded
	batches, err := store.ListBatches(context.Background(), 10, nil)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].RowCount)
	assert.Equal(t, 1, batches[0].FlaggedCount)
	assert.Equal(t, "api", batches[0].Source)
}

func TestScoreBatch_EmptyBatch(t *testing.T) {
	r, _ := testRouter(t)

	w := postJSON(t, r, "/v1/score", ScoreRequest{Transactions: []ScoreTransaction{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreBatch_InvalidBody(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreBatch_MissingTransactionID(t *testing.T) {
	r, _ := testRouter(t)

	// binding:"required" on transactionId rejects the payload
	w := postJSON(t, r, "/v1/score", map[string]interface{}{
		"transactions": []map[string]interface{}{
			{"features": map[string]float64{"Amount": 0.5}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreBatch_TooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewScorer(passthroughModel()), NewMemoryStore(), nil, 1)
	r := gin.New()
	handler.RegisterRoutes(r.Group("/v1"))

	w := postJSON(t, r, "/v1/score", ScoreRequest{
		Transactions: []ScoreTransaction{
			{TransactionID: "tx1"},
			{TransactionID: "tx2"},
		},
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestListBatches(t *testing.T) {
	r, _ := testRouter(t)

	for i := 0; i < 3; i++ {
		w := postJSON(t, r, "/v1/score", ScoreRequest{
			Transactions: []ScoreTransaction{{TransactionID: "tx1"}},
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/batches?limit=2", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Batches    []*Batch `json:"batches"`
		Count      int      `json:"count"`
		NextCursor string   `json:"nextCursor"`
		HasMore    bool     `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextCursor)

	// Second page picks up the remaining batch.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/batches?limit=2&cursor="+resp.NextCursor, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.False(t, resp.HasMore)
	assert.Empty(t, resp.NextCursor)
}

func TestListBatches_InvalidCursor(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/batches?cursor=%25%25not-base64", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSchema(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/schema", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Features []string `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Amount", "Is_Foreign"}, resp.Features)
}

func TestScoreBatch_WhitespaceTransactionID(t *testing.T) {
	r, _ := testRouter(t)

	w := postJSON(t, r, "/v1/score", ScoreRequest{
		Transactions: []ScoreTransaction{
			{TransactionID: "   ", Features: map[string]float64{"Amount": 0.2}},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_transaction", resp.Error)
}

func TestScoreBatch_TransactionIDTooLong(t *testing.T) {
	r, _ := testRouter(t)

	w := postJSON(t, r, "/v1/score", ScoreRequest{
		Transactions: []ScoreTransaction{
			{TransactionID: strings.Repeat("x", 200), Features: map[string]float64{"Amount": 0.2}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
