package competitions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fisski-backend/lib/scrapers/fis"
	"fisski-backend/lib/testutil"
	"fisski-backend/services/competitions/db"

	"github.com/stretchr/testify/require"
)

const calendarPage = `<!DOCTYPE html>
<html><body>
<div class="table-row" id="55579">
	<a href="https://www.fis-ski.com/DB/general/event-details.html?sectorcode=AL&amp;eventid=55579&amp;seasoncode=2025"></a>
	<a href="#">26-27 Oct 2024</a>
	<div><div class="font_md_large clip">Soelden</div></div>
	<div class="country"><span class="country__name-short">AUT</span></div>
	<div class="split-row_bordered">
		<div class="split-row__item"><div class="clip">WC</div></div>
		<div class="split-row__item"><div class="clip">GS</div></div>
	</div>
	<div class="gender">
		<div class="gender__item gender__item_m">M</div>
		<div class="gender__item gender__item_l">L</div>
	</div>
	<div class="status">
		<span class="status__item status__item_selected">D</span>
		<span class="status__item">P</span>
		<span class="status__item">C</span>
		<span class="status__item">X</span>
	</div>
</div>
<div class="table-row" id="55620">
	<a href="https://www.fis-ski.com/DB/general/event-details.html?sectorcode=AL&amp;eventid=55620&amp;seasoncode=2025"></a>
	<a href="#">16 Nov 2024</a>
	<div><div class="font_md_large clip">Levi</div></div>
	<div class="country"><span class="country__name-short">FIN</span></div>
	<div class="split-row_bordered">
		<div class="split-row__item"><div class="clip">WC</div></div>
		<div class="split-row__item"><div class="clip">SL</div></div>
	</div>
	<div class="gender">
		<div class="gender__item gender__item_l">L</div>
	</div>
	<div class="status">
		<span class="status__item">D</span>
		<span class="status__item">P</span>
		<span class="status__item">C</span>
		<span class="status__item">X</span>
	</div>
</div>
</body></html>`

const eventPage = `<!DOCTYPE html>
<html><body>
<div id="eventdetailscontent">
	<div class="table-row">
		<div class="g-row">
			<div class="g-md-2">5002</div>
			<div class="timezone-date" data-date="2024-10-25">25-10-2024</div>
			<div class="g-lg-5"><div class="clip">Giant Slalom Training</div></div>
			<div class="gender"><div class="gender__item gender__item_m">M</div></div>
			<a class="hidden-xs" href="https://www.fis-ski.com/DB/general/results.html?sectorcode=AL&amp;raceid=123457">
				<div class="split-row_bordered">
					<div class="split-row__item">
						<div class="g-row">
							<div class="g-lg-4">1st run</div>
							<div class="g-lg-6"><span class="timezone-time" data-time="11:30">11:30</span></div>
							<div class="g-lg-5"></div>
							<div class="g-lg-7"></div>
						</div>
					</div>
				</div>
			</a>
		</div>
	</div>
</div>
</body></html>`

const notFoundPage = `<!DOCTYPE html>
<html><body>
<div id="eventdetailscontent">
	<div class="table-row">No competition found</div>
</div>
</body></html>`

type fakeUpstream struct {
	calendarHits atomic.Int64
	eventHits    atomic.Int64
	failing      atomic.Bool
}

func (u *fakeUpstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u.failing.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}

		switch r.URL.Path {
		case "/DB/alpine-skiing/calendar-results.html":
			u.calendarHits.Add(1)
			if r.URL.Query().Get("categorycode") == "WC" {
				w.Write([]byte(calendarPage))
				return
			}
			w.Write([]byte("<html><body></body></html>"))
		case "/DB/general/event-details.html":
			u.eventHits.Add(1)
			if r.URL.Query().Get("eventid") == "55579" {
				w.Write([]byte(eventPage))
				return
			}
			w.Write([]byte(notFoundPage))
		default:
			http.NotFound(w, r)
		}
	})
}

func setup(t *testing.T, opts Options) (Service, *fakeUpstream) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/competitions",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	upstream := &fakeUpstream{}
	server := httptest.NewServer(upstream.handler())
	t.Cleanup(server.Close)

	client, err := fis.NewClient(fis.ClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	require.NoError(t, err)

	return NewService(res.DB, client, opts), upstream
}

func TestListCompetitionsCachesCalendar(t *testing.T) {
	svc, upstream := setup(t, Options{})
	ctx := context.Background()

	competitions, err := svc.ListCompetitions(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, competitions, 2)
	require.EqualValues(t, 1, upstream.calendarHits.Load())

	// second listing is served from the cache
	competitions, err = svc.ListCompetitions(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, competitions, 2)
	require.EqualValues(t, 1, upstream.calendarHits.Load())
}

func TestListCompetitionsFilters(t *testing.T) {
	svc, _ := setup(t, Options{})
	ctx := context.Background()

	women, err := svc.ListCompetitions(ctx, ListFilters{Gender: "W"})
	require.NoError(t, err)
	require.Len(t, women, 1)
	require.Equal(t, "Levi", women[0].Location)

	giantSlalom, err := svc.ListCompetitions(ctx, ListFilters{Discipline: "GS"})
	require.NoError(t, err)
	require.Len(t, giantSlalom, 1)
	require.Equal(t, "Soelden", giantSlalom[0].Location)

	// location matching is a case-insensitive substring
	soelden, err := svc.ListCompetitions(ctx, ListFilters{Location: "soel"})
	require.NoError(t, err)
	require.Len(t, soelden, 1)

	none, err := svc.ListCompetitions(ctx, ListFilters{Gender: "W", Discipline: "GS"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetEventDetailCached(t *testing.T) {
	svc, upstream := setup(t, Options{})
	ctx := context.Background()

	detail, err := svc.GetEventDetail(ctx, "55579")
	require.NoError(t, err)
	require.Len(t, detail.Races, 1)
	require.Equal(t, fis.GiantSlalomTraining, detail.Races[0].Discipline)
	require.NotNil(t, detail.Competition)
	require.Equal(t, "Soelden", detail.Competition.Location)
	require.EqualValues(t, 1, upstream.eventHits.Load())

	_, err = svc.GetEventDetail(ctx, "55579")
	require.NoError(t, err)
	require.EqualValues(t, 1, upstream.eventHits.Load())
}

func TestGetEventDetailNotFound(t *testing.T) {
	svc, _ := setup(t, Options{})

	_, err := svc.GetEventDetail(context.Background(), "00000")
	require.ErrorIs(t, err, fis.ErrNotFound)
}

func TestStaleCacheServedOnUpstreamFailure(t *testing.T) {
	svc, upstream := setup(t, Options{CalendarTTL: time.Nanosecond})
	ctx := context.Background()

	competitions, err := svc.ListCompetitions(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, competitions, 2)

	upstream.failing.Store(true)

	// the entry is expired, the re-scrape fails, the stale copy is
	// still better than a 500
	competitions, err = svc.ListCompetitions(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, competitions, 2)
}
