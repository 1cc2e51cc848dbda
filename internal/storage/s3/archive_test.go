package s3_test

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbot/internal/config"
	"ledgerbot/internal/port"
	"ledgerbot/internal/storage/s3"
)

func newArchive(t *testing.T, endpoint string) *s3.Archive {
	t.Helper()
	a, err := s3.NewArchive(context.Background(), &config.ArchiveConfig{
		Provider:  "s3",
		Region:    "ru-central1",
		Endpoint:  endpoint,
		AccessKey: "AKID",
		SecretKey: "SECRET",
	})
	require.NoError(t, err)
	return a
}

func TestArchive_Upload(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotType, gotDisposition string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotDisposition = r.Header.Get("Content-Disposition")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	out, err := newArchive(t, server.URL).Upload(context.Background(), port.UploadInput{
		Bucket:      "exports",
		Key:         "ledger/2025/report.xlsx",
		Body:        bytes.NewReader([]byte("PK-data")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		FileName:    "Финансовый_отчет.xlsx",
	})

	require.NoError(t, err)
	assert.Equal(t, `"abc123"`, out.ETag)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/exports/ledger/2025/report.xlsx", gotPath)
	assert.True(t, strings.HasPrefix(gotType, "application/vnd.openxmlformats"))
	assert.Contains(t, string(gotBody), "PK-data")
	assert.Equal(t, s3.ContentDisposition("Финансовый_отчет.xlsx"), gotDisposition)
}

func TestArchive_UploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer server.Close()

	_, err := newArchive(t, server.URL).Upload(context.Background(), port.UploadInput{
		Bucket: "exports", Key: "k", Body: bytes.NewReader([]byte("x")),
	})

	assert.ErrorContains(t, err, "archiving export k")
}

func TestArchive_GetPresignedURL(t *testing.T) {
	a := newArchive(t, "http://storage.local")

	url, err := a.GetPresignedURL(context.Background(), "exports", "ledger/report.xlsx", 900)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://storage.local/exports/ledger/report.xlsx?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestArchive_GetPresignedURL_CapsExpiry(t *testing.T) {
	a := newArchive(t, "http://storage.local")

	url, err := a.GetPresignedURL(context.Background(), "exports", "ledger/report.xlsx", 30*24*3600)

	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Expires=604800")
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename=report.xlsx`, s3.ContentDisposition("report.xlsx"))

	got := s3.ContentDisposition("Финансовый_отчет.xlsx")
	assert.True(t, strings.HasPrefix(got, "attachment; filename*=utf-8''"), got)
	_, params, err := mime.ParseMediaType(got)
	require.NoError(t, err)
	assert.Equal(t, "Финансовый_отчет.xlsx", params["filename"])
}
