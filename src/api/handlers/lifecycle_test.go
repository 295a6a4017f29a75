package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"inventory/src/models"
	"inventory/src/schemas"
	"inventory/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleRoutes(t *testing.T) {
	asset := createAsset(t, map[string]any{"label": "Dell U2720Q"})
	base := fmt.Sprintf("/api/assets/%d", asset.ID)

	t.Run("should assign an in-stock asset", func(t *testing.T) {
		var result services.AssignResult
		res := call(t, http.MethodPost, base+"/assign", adminToken, map[string]any{"assignee": "Ana Ruiz <ana@example.com>", "notes": "desk 12"}, &result)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, models.AssetStatusInStock, result.From)
		assert.Equal(t, models.AssetStatusAssigned, result.Status)
		assert.Positive(t, result.AssignmentID)
		assert.Equal(t, models.EventTypeAssigned, result.Event.EventType)
	})

	t.Run("should refuse a second assignment", func(t *testing.T) {
		var body schemas.ErrorResponse
		res := call(t, http.MethodPost, base+"/assign", adminToken, map[string]any{"assignee": "Bob"}, &body)
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("should reject a malformed assignee", func(t *testing.T) {
		other := createAsset(t, map[string]any{"label": "Spare monitor"})
		res := call(t, http.MethodPost, fmt.Sprintf("/api/assets/%d/assign", other.ID), adminToken, map[string]any{"assignee": "Ana <not-an-email>"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	})

	t.Run("should refuse transitions from plain users", func(t *testing.T) {
		res := call(t, http.MethodPost, base+"/return", userToken, nil, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("should send an assigned asset to repair and bring it back", func(t *testing.T) {
		var result services.TransitionResult
		res := call(t, http.MethodPost, base+"/repair", adminToken, map[string]any{"notes": "dead pixels"}, &result)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, models.AssetStatusAssigned, result.From)
		assert.Equal(t, models.AssetStatusRepair, result.Status)

		res = call(t, http.MethodPost, base+"/exit-repair", adminToken, map[string]any{"cost": "abc"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

		res = call(t, http.MethodPost, base+"/exit-repair", adminToken, map[string]any{"cost": "85,5", "notes": "panel swapped"}, &result)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, models.AssetStatusRepair, result.From)
		assert.Equal(t, models.AssetStatusInStock, result.Status)
		require.NotNil(t, result.Event.RepairCost)
		assert.Equal(t, "85.50", result.Event.RepairCost.StringFixed(2))
	})

	t.Run("should keep the ledger", func(t *testing.T) {
		var assignments []models.Assignment
		res := call(t, http.MethodGet, base+"/assignments", userToken, nil, &assignments)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Len(t, assignments, 1)
		assert.Equal(t, "Ana Ruiz", assignments[0].AssigneeName)
		assert.NotNil(t, assignments[0].ReturnedAt)
	})

	t.Run("should refuse a return without an active assignment", func(t *testing.T) {
		res := call(t, http.MethodPost, base+"/return", adminToken, nil, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("should retire and then refuse everything", func(t *testing.T) {
		var result services.TransitionResult
		res := call(t, http.MethodPost, base+"/retire", adminToken, map[string]any{"notes": "end of life"}, &result)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, models.AssetStatusRetired, result.Status)

		for _, op := range []string{"/assign", "/return", "/repair", "/exit-repair", "/retire"} {
			res := call(t, http.MethodPost, base+op, adminToken, map[string]any{"assignee": "Carla"}, nil)
			assert.Equal(t, http.StatusConflict, res.StatusCode, op)
		}
	})

	t.Run("should answer 404 for unknown assets", func(t *testing.T) {
		res := call(t, http.MethodPost, "/api/assets/999999/retire", adminToken, nil, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestCategoryRoutes(t *testing.T) {
	var category models.AssetCategory
	res := call(t, http.MethodPost, "/api/categories", adminToken, map[string]any{"name": "Docking stations"}, &category)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "Docking stations", category.Name)

	res = call(t, http.MethodPost, "/api/categories", userToken, map[string]any{"name": "Phones"}, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var categories []models.AssetCategory
	res = call(t, http.MethodGet, "/api/categories", userToken, nil, &categories)
	require.Equal(t, http.StatusOK, res.StatusCode)
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Docking stations")

	res = call(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res = call(t, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
