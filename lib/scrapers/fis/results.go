package fis

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"

	"fisski-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var competitorIdRegex = regexp.MustCompile(`competitorid=(\d+)`)

// RaceResults fetches and parses the result list of a race. Team
// events are skipped entirely (their result pages use a different
// layout) and races without a published result list yield nil.
func (c *Client) RaceResults(ctx context.Context, raceID string, discipline Discipline) ([]Result, error) {
	if isTeamEvent(discipline) {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "client:RaceResults")
	defer span.End()
	span.SetAttributes(
		attribute.String("race_id", raceID),
		attribute.String("discipline", string(discipline)),
	)

	doc, err := c.document(ctx, "/DB/general/results.html", url.Values{
		"sectorcode": {"AL"},
		"raceid":     {raceID},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch results")
		return nil, err
	}

	rows := doc.Find("#events-info-results > .tbody > .table-row")
	if rows.Length() < 2 {
		return nil, nil
	}

	twoRuns := hasTwoRuns(discipline)

	var results []Result
	rows.Each(func(_ int, row *goquery.Selection) {
		result, ok := parseResultRow(row, twoRuns)
		if !ok {
			slog.WarnContext(ctx, "skipping unparsable result row", "race_id", raceID)
			return
		}
		results = append(results, result)
	})

	return results, nil
}

// column layout of a result row, two-run disciplines (SL/GS) carry
// separate run time columns before the total
func resultColumns(twoRuns bool, colCount int) (run1, run2, total, diff, fisPoints, cupPoints int) {
	if twoRuns {
		run1, run2, total, diff, fisPoints, cupPoints = 6, 7, 8, 9, 10, 11
	} else {
		run1, run2, total, diff, fisPoints, cupPoints = -1, -1, 6, 7, 8, 9
	}
	// the cup points column only exists on cup races
	if colCount <= 9 || cupPoints >= colCount {
		cupPoints = -1
	}
	return
}

func parseResultRow(row *goquery.Selection, twoRuns bool) (Result, bool) {
	cols := row.Find(".g-row > .g-row > div")
	if cols.Length() < 7 {
		return Result{}, false
	}

	run1Idx, run2Idx, totalIdx, diffIdx, fisIdx, cupIdx := resultColumns(twoRuns, cols.Length())
	if fisIdx >= cols.Length() {
		return Result{}, false
	}

	var athleteID string
	if groups := competitorIdRegex.FindStringSubmatch(row.AttrOr("href", "")); len(groups) == 2 {
		athleteID = groups[1]
	}

	rank, err := strconv.Atoi(htmlutil.Text(cols.Eq(0)))
	if err != nil {
		return Result{}, false
	}

	result := Result{
		AthleteID: athleteID,
		Rank:      rank,
		Name:      htmlutil.Text(cols.Eq(3).Find(".athlete-name").First()),
		Nation:    htmlutil.Text(cols.Eq(5).Find(".country__name-short").First()),
		Total:     htmlutil.Text(cols.Eq(totalIdx)),
		Diff:      htmlutil.Text(cols.Eq(diffIdx)),
		FisPoints: parseFloatOrZero(htmlutil.Text(cols.Eq(fisIdx))),
	}
	if run1Idx >= 0 {
		result.Run1 = htmlutil.Text(cols.Eq(run1Idx))
	}
	if run2Idx >= 0 {
		result.Run2 = htmlutil.Text(cols.Eq(run2Idx))
	}
	if cupIdx >= 0 {
		points := parseIntOrZero(htmlutil.Text(cols.Eq(cupIdx)))
		result.CupPoints = &points
	}

	return result, true
}

func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
