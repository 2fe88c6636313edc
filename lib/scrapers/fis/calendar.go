package fis

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"fisski-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Calendar fetches and parses the alpine calendar listing for a
// category (WC, WSC, OWG, ...). Rows that fail to parse are logged
// and dropped rather than failing the whole listing.
func (c *Client) Calendar(ctx context.Context, category string) ([]Competition, error) {
	if category == "" {
		category = "WC"
	}

	ctx, span := tracer.Start(ctx, "client:Calendar")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	doc, err := c.document(ctx, "/DB/alpine-skiing/calendar-results.html", url.Values{
		"sectorcode":   {"AL"},
		"categorycode": {category},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch calendar")
		return nil, err
	}

	var competitions []Competition
	doc.Find(".table-row").Each(func(_ int, row *goquery.Selection) {
		competition, err := parseCompetitionRow(row)
		if err != nil {
			slog.WarnContext(ctx, "skipping unparsable calendar row", "err", err)
			return
		}
		competitions = append(competitions, competition)
	})

	return competitions, nil
}

func parseCompetitionRow(row *goquery.Selection) (Competition, error) {
	eventID := row.AttrOr("id", "")
	if eventID == "" {
		return Competition{}, fmt.Errorf("calendar row carries no event id")
	}

	eventLink := row.Find(`a[href*="event-details"]`).First()
	eventUrl := eventLink.AttrOr("href", "")

	// the date cell is the anchor right after the event details link
	date := htmlutil.Text(row.Find(`[href*="event-details"] + a`).First())
	isLive := strings.HasSuffix(date, "live")
	if isLive {
		date = strings.TrimSpace(strings.TrimSuffix(date, "live"))
	}

	location := htmlutil.Text(row.Find(".font_md_large").First())
	country := htmlutil.Text(row.Find(".country__name-short").First())

	categories := row.Find(".split-row_bordered .clip")
	if categories.Length() < 2 {
		return Competition{}, fmt.Errorf("event %s: missing category/discipline cells", eventID)
	}
	category := htmlutil.Text(categories.Eq(0))
	disciplines := ParseDisciplines(htmlutil.Text(categories.Eq(1)))

	gender := parseGender(row.Find(".gender").First())
	cancelled := row.Find(".cancelled").Length() > 0
	status := parseStatus(row.Find(".status").First())

	return Competition{
		EventID:    eventID,
		Date:       date,
		Location:   location,
		Country:    country,
		Discipline: disciplines,
		Category:   category,
		Gender:     gender,
		Cancelled:  cancelled,
		Status:     status,
		URL:        eventUrl,
		IsLive:     isLive,
	}, nil
}

func parseGender(sel *goquery.Selection) Gender {
	hasMen := sel.Find(".gender__item_m").Length() > 0
	hasWomen := sel.Find(".gender__item_l").Length() > 0

	if hasMen && hasWomen {
		return GenderBoth
	}
	if hasMen {
		return GenderMen
	}
	return GenderWomen
}

// parseStatus reads the four D/P/C/cancelled indicator items. A
// malformed status cell yields all-false flags instead of an error.
func parseStatus(sel *goquery.Selection) Status {
	items := sel.Find(".status__item")
	if items.Length() < 4 {
		return Status{}
	}
	selected := func(i int) bool {
		return items.Eq(i).HasClass("status__item_selected")
	}
	return Status{
		DataAvailable: selected(0),
		PdfAvailable:  selected(1),
		Changes:       selected(2),
		Cancelled:     selected(3),
	}
}
