package fis

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fisski-backend/lib/htmlutil"
	"fisski-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var raceIdRegex = regexp.MustCompile(`raceid=(\d+)`)
var fileSizeRegex = regexp.MustCompile(`\s*\([^)]*\)`)

// EventDetail fetches and parses the full detail page of a
// competition: its races (with runs and results), technical delegates,
// broadcasters and downloadable documents. Returns ErrNotFound when
// the event id is unknown upstream.
func (c *Client) EventDetail(ctx context.Context, eventID string) (EventDetail, error) {
	ctx, span := tracer.Start(ctx, "client:EventDetail")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	doc, err := c.document(ctx, "/DB/general/event-details.html", url.Values{
		"sectorcode": {"AL"},
		"eventid":    {eventID},
		"seasoncode": {c.season},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event details")
		return EventDetail{}, err
	}

	raceRows := doc.Find("#eventdetailscontent > .table-row")
	if raceRows.Length() == 1 && htmlutil.Text(raceRows.First()) == "No competition found" {
		span.SetStatus(codes.Error, ErrNotFound.Error())
		return EventDetail{}, ErrNotFound
	}

	races, err := c.parseRaces(ctx, raceRows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse races")
		return EventDetail{}, err
	}

	competition, err := c.findCompetition(ctx, eventID)
	if err != nil {
		return EventDetail{}, err
	}

	return EventDetail{
		Competition:        competition,
		Races:              races,
		TechnicalDelegates: parseTechnicalDelegates(doc),
		Broadcasters:       parseBroadcasters(doc),
		Documents:          parseDocuments(doc),
	}, nil
}

func (c *Client) parseRaces(ctx context.Context, raceRows *goquery.Selection) ([]Race, error) {
	var races []Race
	var fetchErr error

	raceRows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		codexEl := row.Find(".link_theme_dark").First()
		var codex string
		if codexEl.Length() > 0 {
			codex = htmlutil.Text(codexEl.Find(".link__text").First())
		} else {
			codex = htmlutil.Text(row.Find(".g-md-2").First())
		}

		raceDate, ok := parseRaceDate(row)
		if !ok {
			slog.WarnContext(ctx, "race row carries no date", "codex", codex)
			return true
		}

		disciplineText := htmlutil.Text(row.Find(".g-lg-5 .clip").First())
		discipline, ok := DisciplineFromName(disciplineText)
		if !ok {
			slog.WarnContext(ctx, "unknown discipline", "discipline", disciplineText)
			return true
		}
		isTraining := strings.HasSuffix(disciplineText, "Training")

		gender := GenderMen
		genderEl := row.Find(".gender__item").First()
		if genderEl.HasClass("gender__item_l") {
			gender = GenderWomen
		}

		runElement := row.Find("a.hidden-xs").First()
		var raceID string
		if groups := raceIdRegex.FindStringSubmatch(runElement.AttrOr("href", "")); len(groups) == 2 {
			raceID = groups[1]
		}

		runs := parseRuns(runElement)

		liveTimingUrl := row.Find(`a[href*="live.fis-ski.com"]`).First().AttrOr("href", "")

		var results []Result
		if !isTraining {
			var err error
			results, err = c.RaceResults(ctx, raceID, discipline)
			if err != nil {
				fetchErr = err
				return false
			}
		}

		races = append(races, Race{
			RaceID:        raceID,
			Codex:         codex,
			Date:          raceDate,
			Discipline:    discipline,
			IsTraining:    isTraining,
			Gender:        gender,
			Runs:          runs,
			HasLiveTiming: liveTimingUrl != "",
			LiveTimingURL: liveTimingUrl,
			Results:       results,
		})
		return true
	})

	return races, fetchErr
}

func parseRaceDate(row *goquery.Selection) (time.Time, bool) {
	dateEl := row.Find(".timezone-date").First()
	timeEl := row.Find(".timezone-time").First()

	dateAttr := dateEl.AttrOr("data-date", "")
	if dateAttr == "" {
		return time.Time{}, false
	}

	if timeAttr := timeEl.AttrOr("data-time", ""); timeAttr != "" {
		parsed, err := time.ParseInLocation(
			"2006-01-02 15:04",
			dateAttr+" "+timeAttr,
			timezone.Location,
		)
		if err == nil {
			return parsed, true
		}
	}

	parsed, err := time.ParseInLocation("2006-01-02", dateAttr, timezone.Location)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func parseRuns(runElement *goquery.Selection) []Run {
	var runs []Run
	runElement.Find(".split-row_bordered .split-row__item").Each(func(_ int, item *goquery.Selection) {
		runInfo := item.Find(".g-row").First()
		if runInfo.Length() == 0 {
			return
		}
		// full-width items are informational notes, not runs
		if item.Find(".g-xs-24").Length() > 0 {
			return
		}

		// "1st", "2nd" etc, only the leading digit matters
		numberText := htmlutil.Text(item.Find(".g-row > .g-lg-4").First())
		if numberText == "" {
			return
		}
		number, err := strconv.Atoi(numberText[0:1])
		if err != nil {
			return
		}

		startTime := runInfo.Find(".timezone-time").First().AttrOr("data-time", "")
		if startTime == "" {
			return
		}

		runs = append(runs, Run{
			Number: number,
			Time:   startTime,
			Status: htmlutil.Text(runInfo.Find(".g-lg-5").First()),
			Info:   htmlutil.Text(runInfo.Find(".g-lg-7").First()),
		})
	})
	return runs
}

// findCompetition resolves the base calendar entry for an event id by
// scanning categories in order of likelihood: world cup first, then
// world championships, then olympics.
func (c *Client) findCompetition(ctx context.Context, eventID string) (*Competition, error) {
	for _, category := range []string{"WC", "WSC", "OWG"} {
		competitions, err := c.Calendar(ctx, category)
		if err != nil {
			return nil, err
		}
		for i := range competitions {
			if competitions[i].EventID == eventID {
				return &competitions[i], nil
			}
		}
		slog.DebugContext(ctx, "competition not in category list", "event_id", eventID, "category", category)
	}
	return nil, ErrNotFound
}

func parseTechnicalDelegates(doc *goquery.Document) []TechnicalDelegate {
	var delegates []TechnicalDelegate

	doc.Find(`section:contains('Technical Delegate') .table-row`).Each(func(_ int, row *goquery.Selection) {
		cols := row.Find(".g-xs-24 > div")
		if cols.Length() < 4 {
			return
		}

		delegates = append(delegates, TechnicalDelegate{
			Codex:  htmlutil.Text(cols.Eq(0)),
			Name:   htmlutil.Text(cols.Eq(1)),
			Nation: htmlutil.Text(cols.Eq(2).Find(".country__name-short").First()),
			TdID:   htmlutil.Text(cols.Eq(3)),
		})
	})

	return delegates
}

func parseBroadcasters(doc *goquery.Document) []Broadcaster {
	var broadcasters []Broadcaster

	doc.Find(".broadcaster").Each(func(_ int, el *goquery.Selection) {
		var countries []string
		for _, c := range strings.Split(el.Find(".broadcaster-countries").First().Text(), ",") {
			countries = append(countries, strings.TrimSpace(c))
		}

		linkEl := el.Find(".broadcaster-link").First()
		broadcasters = append(broadcasters, Broadcaster{
			Name:      htmlutil.Text(linkEl),
			Countries: countries,
			URL:       linkEl.AttrOr("href", ""),
			LogoURL:   linkEl.Find("img").First().AttrOr("src", ""),
		})
	})

	return broadcasters
}

func parseDocuments(doc *goquery.Document) map[string]string {
	documents := map[string]string{}

	doc.Find(".drop-btn__item").Each(func(_ int, item *goquery.Selection) {
		nameEl := item.Find("span").First()
		linkEl := item.Find("a").First()
		if nameEl.Length() == 0 || linkEl.Length() == 0 {
			return
		}
		// the name carries a "(file size)" suffix
		name := fileSizeRegex.ReplaceAllString(htmlutil.Text(nameEl), "")
		documents[name] = linkEl.AttrOr("href", "")
	})

	return documents
}
