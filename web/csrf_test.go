package web

import (
	"net/http"
	"strings"
	"testing"
)

// TestPreventCSRF checks that cross-site form posts are rejected while
// same-site posts pass through.
func TestPreventCSRF(t *testing.T) {

	_, _, server := setup(t)

	req, err := http.NewRequest("POST", server.URL+"/reports/2/delete", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got, want := resp.StatusCode, http.StatusForbidden; got != want {
		t.Errorf("got status %d want %d", got, want)
	}
}
