package variants

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"haplo/api/contexts"
	"haplo/api/models"
	pm "haplo/api/models/processing"
	"haplo/api/models/variants"
	"haplo/api/repositories/locus"
	"haplo/api/services"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func setUpEcho(cfg *models.Config, ps *services.ProcessingService, path string) (*contexts.HaploContext, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	gc := &contexts.HaploContext{
		Context:           c,
		Es7Client:         nil,
		Config:            cfg,
		ProcessingService: ps,
	}
	return gc, rec
}

func getJsonBody(rec *httptest.ResponseRecorder) map[string]interface{} {
	// - extract body bytes from response
	body, _ := io.ReadAll(rec.Body)
	// - unmarshal or decode the JSON to a declared empty interface.
	var bodyJson map[string]interface{}
	json.Unmarshal(body, &bodyJson)

	return bodyJson
}

func testService(t *testing.T) (*models.Config, *services.ProcessingService) {
	cfg := &models.Config{}
	ps := services.NewProcessingService(nil, cfg)
	return cfg, ps
}

func TestGetAllProcessRequests(t *testing.T) {
	cfg, ps := testService(t)

	t.Run("should return 200 and an empty array when nothing ran", func(t *testing.T) {
		gc, rec := setUpEcho(cfg, ps, "/variants/processing/requests")

		assert.NoError(t, GetAllProcessRequests(gc))
		assert.Equal(t, http.StatusOK, rec.Code)

		body, _ := io.ReadAll(rec.Body)
		var requests []*pm.ProcessRequest
		assert.NoError(t, json.Unmarshal(body, &requests))
		assert.Empty(t, requests)
	})
}

func TestGetProcessRequestStats(t *testing.T) {
	cfg, ps := testService(t)

	t.Run("should reject a missing id", func(t *testing.T) {
		gc, _ := setUpEcho(cfg, ps, "/variants/processing/requests/stats")

		err := GetProcessRequestStats(gc)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("should report not-found for an unknown id", func(t *testing.T) {
		gc, _ := setUpEcho(cfg, ps, fmt.Sprintf("/variants/processing/requests/stats?id=%s", uuid.New()))

		err := GetProcessRequestStats(gc)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestVariantsProcessRejectsMissingFileNames(t *testing.T) {
	cfg, ps := testService(t)

	gc, rec := setUpEcho(cfg, ps, "/variants/processing/run")

	assert.NoError(t, VariantsProcess(gc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessingStatsWithoutIndexer(t *testing.T) {
	cfg, ps := testService(t)

	gc, rec := setUpEcho(cfg, ps, "/variants/processing/stats")

	assert.NoError(t, ProcessingStats(gc))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBlocksInRange(t *testing.T) {
	cfg, ps := testService(t)

	t.Run("should report unavailable without a locus index", func(t *testing.T) {
		gc, _ := setUpEcho(cfg, ps, "/variants/blocks?chromosome=1&lowerBound=1&upperBound=1000")
		gc.Chromosome = "1"
		gc.LowerBound = 1
		gc.UpperBound = 1000

		err := GetBlocksInRange(gc)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
	})

	t.Run("should serve indexed blocks overlapping the range", func(t *testing.T) {
		ix, err := locus.Open(filepath.Join(t.TempDir(), "locus.db"))
		assert.NoError(t, err)
		defer ix.Close()
		ps.LocusIndex = ix

		assert.NoError(t, ix.Add(&variants.Block{
			Chrom: "1",
			Pos:   100,
			Len:   50,
			Variation: []variants.RefVar{
				{Start: 100, End: 100, Ref: "A", Alt: "T"},
			},
		}))

		gc, rec := setUpEcho(cfg, ps, "/variants/blocks?chromosome=1&lowerBound=1&upperBound=1000")
		gc.Chromosome = "1"
		gc.LowerBound = 1
		gc.UpperBound = 1000

		assert.NoError(t, GetBlocksInRange(gc))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := getJsonBody(rec)
		assert.Equal(t, "1", body["chromosome"])

		blocks := body["blocks"].([]interface{})
		assert.Len(t, blocks, 1)
		assert.Equal(t, float64(100), blocks[0].(map[string]interface{})["Pos"])
	})
}
