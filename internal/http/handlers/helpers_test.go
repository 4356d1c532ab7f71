package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/hongminglow/social-api/internal/service"
	"github.com/hongminglow/social-api/internal/storage"
)

func newTestServer(t *testing.T, store storage.Store) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	NewUserHandler(service.NewUserService(store)).Register(router)
	NewThoughtHandler(service.NewThoughtService(store, service.NewReferenceSync(store))).Register(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends body (when non-nil) as JSON and decodes the response into out
// (when non-nil). It returns the status code.
func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			reader = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}
