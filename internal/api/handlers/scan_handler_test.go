package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/scanvault/scanvault-be/internal/api/handlers"
	"github.com/scanvault/scanvault-be/internal/capture"
	"github.com/scanvault/scanvault-be/internal/database"
	"github.com/scanvault/scanvault-be/internal/decode"
	"github.com/scanvault/scanvault-be/internal/models"
	"github.com/scanvault/scanvault-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, decodeURL string) *httptest.Server {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	eventService := services.NewEventService(db)
	scanService := services.NewScanService(db, eventService)
	processor := capture.NewProcessor(scanService)
	decoder := decode.NewClient(decodeURL, 5*time.Second)

	h := handlers.NewScanHandler(scanService, processor, decoder)

	r := chi.NewRouter()
	r.Get("/scans", h.GetAll)
	r.Post("/scans", h.Capture)
	r.Post("/scans/image", h.CaptureImage)
	r.Delete("/scans/{id}", h.Delete)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func postCapture(t *testing.T, ts *httptest.Server, payload handlers.CapturePayload) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/scans", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func listScans(t *testing.T, ts *httptest.Server) []models.ScannedItem {
	t.Helper()
	resp, err := http.Get(ts.URL + "/scans")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.ScannedItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	return items
}

func TestScanRoutes_CaptureListDelete(t *testing.T) {
	ts := newTestServer(t, "http://unused.invalid")

	resp := postCapture(t, ts, handlers.CapturePayload{Data: "https://example.com", Type: "QR_CODE", Allowed: "ALL"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result handlers.CaptureResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Saved)

	// Redelivered event is absorbed by the capture guard.
	resp = postCapture(t, ts, handlers.CapturePayload{Data: "https://example.com", Type: "QR_CODE", Allowed: "ALL"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Saved)

	items := listScans(t, ts)
	require.Len(t, items, 1)
	assert.Equal(t, "QR Code", items[0].Type)
	assert.Equal(t, "https://example.com", items[0].Data)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/scans/"+items[0].ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	assert.Empty(t, listScans(t, ts))
}

func TestScanRoutes_TypeFilterRejection(t *testing.T) {
	ts := newTestServer(t, "http://unused.invalid")

	resp := postCapture(t, ts, handlers.CapturePayload{Data: "0123456789012", Type: "EAN-13", Allowed: "QR"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Only QR scans are allowed")
	assert.Empty(t, listScans(t, ts))
}

func TestScanRoutes_ImageUpload(t *testing.T) {
	decodeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"type":"qrcode","symbol":[{"data":"https://decoded.example","error":null}]}]`))
	}))
	defer decodeSrv.Close()

	ts := newTestServer(t, decodeSrv.URL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "qr-image.png")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/scans/image", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result handlers.CaptureResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Saved)
	assert.Equal(t, "https://decoded.example", result.Data)

	items := listScans(t, ts)
	require.Len(t, items, 1)
	assert.Equal(t, "QR Code", items[0].Type)
}

func TestScanRoutes_ImageUploadNoCode(t *testing.T) {
	decodeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"type":"qrcode","symbol":[{"data":null,"error":"could not find/read a QR code"}]}]`))
	}))
	defer decodeSrv.Close()

	ts := newTestServer(t, decodeSrv.URL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/scans/image", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, listScans(t, ts))
}
