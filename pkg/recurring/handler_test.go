package recurring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/moneta/moneta/internal/dates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updateResponse mirrors the Update handler's response body.
type updateResponse struct {
	Template    TemplateDTO `json:"template"`
	Propagation struct {
		Requested int `json:"requested"`
		Updated   int `json:"updated"`
	} `json:"propagation"`
	Error string `json:"error"`
}

func updateRequest(t *testing.T, tpl Template, query string) *http.Request {
	body, err := json.Marshal(templateToDTO(tpl, dates.None))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/recurring/%d%s", tpl.Id, query), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)
	return mux.SetURLVars(req, map[string]string{"id": strconv.Itoa(tpl.Id)})
}

func TestUpdateHandler_Propagation(t *testing.T) {
	// Setup
	teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)

	created := reconciled(t)
	created.Skeleton.Amount = decimal.NewFromInt(1300)

	// Call the handler with full propagation
	w := httptest.NewRecorder()
	handler.Update(w, updateRequest(t, created, "?propagation=all"))

	// Verify response
	assert.Equal(t, http.StatusOK, w.Code)
	var response updateResponse
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, created.Id, response.Template.Id)
	assert.Equal(t, 5, response.Propagation.Requested)
	assert.Equal(t, 5, response.Propagation.Updated)
	assert.Empty(t, response.Error)
}

func TestUpdateHandler_PartialPropagation(t *testing.T) {
	// Setup
	teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)

	created := reconciled(t)
	created.Skeleton.Amount = decimal.NewFromInt(1300)
	txRepoStub.FailNextRewrite = errors.New("connection reset")

	// Call the handler while the history rewrite fails
	w := httptest.NewRecorder()
	handler.Update(w, updateRequest(t, created, "?propagation=all"))

	// The failure surfaces, but the counts still reach the client
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response updateResponse
	err := json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, created.Id, response.Template.Id)
	assert.Equal(t, 5, response.Propagation.Requested)
	assert.Equal(t, 0, response.Propagation.Updated)
	assert.Contains(t, response.Error, "history rewrite incomplete")
}

func TestUpdateHandler_NotFound(t *testing.T) {
	// Setup
	teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)

	missing := monthlyRent("2024-01-31")
	missing.Id = 999

	// Call the handler for a template that does not exist
	w := httptest.NewRecorder()
	handler.Update(w, updateRequest(t, missing, ""))

	// Verify response
	assert.Equal(t, http.StatusNotFound, w.Code)
}
