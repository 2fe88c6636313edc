package fis

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient points a client at a local server replaying saved
// fis-ski.com pages from testdata.
func newTestClient(t *testing.T) *Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/DB/alpine-skiing/calendar-results.html":
			switch r.URL.Query().Get("categorycode") {
			case "WC":
				http.ServeFile(w, r, "testdata/calendar_wc.html")
			case "OWG":
				http.ServeFile(w, r, "testdata/calendar_owg.html")
			default:
				http.ServeFile(w, r, "testdata/calendar_empty.html")
			}
		case "/DB/general/event-details.html":
			switch r.URL.Query().Get("eventid") {
			case "55579", "99999":
				http.ServeFile(w, r, "testdata/event.html")
			default:
				http.ServeFile(w, r, "testdata/event_notfound.html")
			}
		case "/DB/general/results.html":
			switch r.URL.Query().Get("raceid") {
			case "123456":
				http.ServeFile(w, r, "testdata/results_gs.html")
			case "654321":
				http.ServeFile(w, r, "testdata/results_dh.html")
			default:
				http.ServeFile(w, r, "testdata/results_empty.html")
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	require.NoError(t, err)
	return client
}
