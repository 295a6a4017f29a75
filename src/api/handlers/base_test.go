package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"inventory/src/api"
	"inventory/src/auth"
	"inventory/src/cache"
	"inventory/src/config"
	"inventory/src/models"
	"inventory/src/repositories/memory"
	"inventory/src/utils"

	"github.com/stretchr/testify/require"
)

var (
	ts         *httptest.Server
	adminToken string
	userToken  string
)

func TestMain(m *testing.M) {
	cfg, err := config.LoadConfig("../../../settings", "TESTING")
	if err != nil {
		log.Println(err, "Error while loading config")
		os.Exit(1)
	}

	jwt := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	adminToken, err = jwt.Sign(models.Actor{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}, time.Hour)
	if err != nil {
		log.Println(err, "Error while signing admin token")
		os.Exit(1)
	}
	userToken, err = jwt.Sign(models.Actor{ID: "user-1", Email: "user@example.com", Role: models.RoleUser}, time.Hour)
	if err != nil {
		log.Println(err, "Error while signing user token")
		os.Exit(1)
	}

	logger := utils.NewLogger(utils.ParseLevel("error"), false, "")
	cards := cache.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL)
	server := api.NewServer(cfg, memory.NewStore(), cards, jwt, logger)

	ts = httptest.NewServer(server)
	code := m.Run()
	ts.Close()
	os.Exit(code)
}

// call sends a JSON request and decodes a JSON response into out when given.
func call(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func createAsset(t *testing.T, body map[string]any) models.Asset {
	t.Helper()
	var asset models.Asset
	res := call(t, http.MethodPost, "/api/assets", adminToken, body, &asset)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return asset
}
