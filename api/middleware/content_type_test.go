package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOnlyAccepts(t *testing.T) {
	cases := []struct {
		allowed     string
		contentType string
		want        int
	}{
		{ContentTypeJSON, "application/json", http.StatusOK},
		{ContentTypeJSON, "application/json; charset=utf-8", http.StatusOK},
		{ContentTypeJSON, "text/plain", http.StatusNotAcceptable},
		{ContentTypeJSON, "", http.StatusNotAcceptable},
		{ContentTypeMultipart, "multipart/form-data; boundary=xyz", http.StatusOK},
		{ContentTypeMultipart, "application/json", http.StatusNotAcceptable},
	}

	for _, tc := range cases {
		handler := OnlyAccepts(tc.allowed, nil)(okHandler())
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s with %q: expected %d got %d", tc.allowed, tc.contentType, tc.want, resp.Code)
		}
		if tc.want == http.StatusNotAcceptable {
			if _, msg := decodeEnvelope(t, resp.Body.Bytes()); msg != "this route only accepts content-type: "+tc.allowed {
				t.Fatalf("unexpected message %q", msg)
			}
		}
	}
}
