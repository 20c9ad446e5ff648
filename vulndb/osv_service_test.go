package vulndb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/package-url/packageurl-go"
	"github.com/stretchr/testify/assert"
)

func testOSVService(baseURL string) OSVService {
	return OSVService{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		retryDelay: time.Millisecond,
	}
}

func mustParsePurl(t *testing.T, purl string) packageurl.PackageURL {
	t.Helper()
	parsed, err := packageurl.FromString(purl)
	assert.NoError(t, err)
	return parsed
}

func TestOSVSearch(t *testing.T) {
	t.Run("maps the osv response to raw vulnerabilities", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)
			w.Write([]byte(`{
				"vulns": [
					{
						"id": "GHSA-xxxx-yyyy-zzzz",
						"aliases": ["CVE-2021-44906"],
						"summary": "prototype pollution",
						"details": "minimist is vulnerable to prototype pollution",
						"severity": [{"type": "CVSS_V3", "score": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}]
					}
				]
			}`))
		}))
		defer srv.Close()

		raws, err := testOSVService(srv.URL).Search(context.Background(), mustParsePurl(t, "pkg:npm/minimist@1.2.5"))

		assert.NoError(t, err)
		if assert.Len(t, raws, 1) {
			assert.Equal(t, "CVE-2021-44906", raws[0].CVEID)
			assert.Equal(t, "prototype pollution", raws[0].Title)
			assert.Equal(t, "osv", raws[0].Source)
			assert.InDelta(t, 9.8, raws[0].CVSSScore, 0.01)
		}
	})

	t.Run("retries rate limited requests before succeeding", func(t *testing.T) {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"vulns": []}`))
		}))
		defer srv.Close()

		raws, err := testOSVService(srv.URL).Search(context.Background(), mustParsePurl(t, "pkg:npm/lodash@4.17.21"))

		assert.NoError(t, err)
		assert.Empty(t, raws)
		assert.Equal(t, int64(3), requests.Load())
	})

	t.Run("gives up after three retries", func(t *testing.T) {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := testOSVService(srv.URL).Search(context.Background(), mustParsePurl(t, "pkg:npm/lodash@4.17.21"))

		assert.Error(t, err)
		// the initial request plus three retries
		assert.Equal(t, int64(4), requests.Load())
	})

	t.Run("does not retry server errors", func(t *testing.T) {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testOSVService(srv.URL).Search(context.Background(), mustParsePurl(t, "pkg:npm/lodash@4.17.21"))

		assert.Error(t, err)
		assert.Equal(t, int64(1), requests.Load())
	})
}
