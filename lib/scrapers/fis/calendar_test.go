package fis

import (
	"context"
	"strings"
	"testing"

	"fisski-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDisciplines(t *testing.T) {
	require.Equal(t, []Discipline{Slalom, GiantSlalom}, ParseDisciplines("SL GS"))
	require.Equal(t, []Discipline{SuperG, Downhill}, ParseDisciplines("DH SG"))
	require.Equal(t, []Discipline{GiantSlalom}, ParseDisciplines("GS"))
	require.Nil(t, ParseDisciplines("TRA"))
}

func TestDisciplineFromName(t *testing.T) {
	testCases := []struct {
		text     string
		expected Discipline
		ok       bool
	}{
		{"Slalom", Slalom, true},
		{"Giant Slalom", GiantSlalom, true},
		{"Super G", SuperG, true},
		{"Downhill Training", DownhillTraining, true},
		{"Team Parallel", TeamParallel, true},
		{"Freestyle", "", false},
	}
	for _, tc := range testCases {
		d, ok := DisciplineFromName(tc.text)
		require.Equal(t, tc.ok, ok, tc.text)
		require.Equal(t, tc.expected, d, tc.text)
	}
}

func docFromString(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseGender(t *testing.T) {
	men := docFromString(t, `<div class="gender"><div class="gender__item gender__item_m"></div></div>`)
	women := docFromString(t, `<div class="gender"><div class="gender__item gender__item_l"></div></div>`)
	both := docFromString(t, `<div class="gender"><div class="gender__item gender__item_m"></div><div class="gender__item gender__item_l"></div></div>`)

	require.Equal(t, GenderMen, parseGender(men.Find(".gender")))
	require.Equal(t, GenderWomen, parseGender(women.Find(".gender")))
	require.Equal(t, GenderBoth, parseGender(both.Find(".gender")))
}

func TestParseStatus(t *testing.T) {
	doc := docFromString(t, `<div class="status">
		<span class="status__item status__item_selected"></span>
		<span class="status__item"></span>
		<span class="status__item status__item_selected"></span>
		<span class="status__item"></span>
	</div>`)
	require.Equal(t, Status{
		DataAvailable: true,
		Changes:       true,
	}, parseStatus(doc.Find(".status")))

	// a malformed cell degrades to all-false flags
	truncated := docFromString(t, `<div class="status"><span class="status__item"></span></div>`)
	require.Equal(t, Status{}, parseStatus(truncated.Find(".status")))
}

func TestCalendar(t *testing.T) {
	defer telemetry.SetupForTesting(t, "test:scrapers/fis")()
	client := newTestClient(t)

	competitions, err := client.Calendar(context.Background(), "WC")
	require.NoError(t, err)
	// the header row without an event id is dropped
	require.Len(t, competitions, 2)

	expected := Competition{
		EventID:    "55579",
		Date:       "26-27 Oct 2024",
		Location:   "Soelden",
		Country:    "AUT",
		Discipline: []Discipline{GiantSlalom},
		Category:   "WC",
		Gender:     GenderBoth,
		Status: Status{
			DataAvailable: true,
			PdfAvailable:  true,
		},
		URL: "https://www.fis-ski.com/DB/general/event-details.html?sectorcode=AL&eventid=55579&seasoncode=2025",
	}
	diff := cmp.Diff(expected, competitions[0])
	require.Empty(t, diff)

	levi := competitions[1]
	require.Equal(t, "55620", levi.EventID)
	require.Equal(t, "16 Nov 2024", levi.Date)
	require.True(t, levi.IsLive)
	require.True(t, levi.Cancelled)
	require.Equal(t, GenderWomen, levi.Gender)
	require.Equal(t, []Discipline{Slalom}, levi.Discipline)
	require.Equal(t, Status{Changes: true, Cancelled: true}, levi.Status)
}
