package fis

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMen   Gender = "M"
	GenderWomen Gender = "W"
	GenderBoth  Gender = "BOTH"
)

type Discipline string

const (
	Slalom              Discipline = "SL"
	GiantSlalom         Discipline = "GS"
	SuperG              Discipline = "SG"
	Downhill            Discipline = "DH"
	SlalomTraining      Discipline = "SLT"
	GiantSlalomTraining Discipline = "GST"
	SuperGTraining      Discipline = "SGT"
	DownhillTraining    Discipline = "DHT"
	TeamCombined        Discipline = "TC"
	TeamParallel        Discipline = "TP"
)

// display names as they appear on event detail pages, normalized the
// same way DisciplineFromName normalizes its input
var disciplineNames = map[string]Discipline{
	"SLALOM":                Slalom,
	"GIANT_SLALOM":          GiantSlalom,
	"SUPER_G":               SuperG,
	"DOWNHILL":              Downhill,
	"SLALOM_TRAINING":       SlalomTraining,
	"GIANT_SLALOM_TRAINING": GiantSlalomTraining,
	"SUPER_G_TRAINING":      SuperGTraining,
	"DOWNHILL_TRAINING":     DownhillTraining,
	"TEAM_COMBINED":         TeamCombined,
	"TEAM_PARALLEL":         TeamParallel,
}

// DisciplineFromName resolves a display name like "Giant Slalom" or
// "Downhill Training" to its discipline code.
func DisciplineFromName(text string) (Discipline, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), " ", "_"))
	d, ok := disciplineNames[key]
	return d, ok
}

// ParseDisciplines extracts the discipline codes present in a calendar
// cell like "SL GS" or "TRA • DH".
func ParseDisciplines(text string) []Discipline {
	var out []Discipline
	for _, d := range []Discipline{Slalom, GiantSlalom, SuperG, Downhill} {
		if strings.Contains(text, string(d)) {
			out = append(out, d)
		}
	}
	return out
}

// hasTwoRuns reports whether the results table of a discipline carries
// separate run 1 / run 2 time columns.
func hasTwoRuns(d Discipline) bool {
	return d == Slalom || d == GiantSlalom
}

// isTeamEvent reports whether results scraping should be skipped, the
// team event result pages use a completely different table layout.
func isTeamEvent(d Discipline) bool {
	return d == TeamCombined || d == TeamParallel
}

// Status carries the D/P/C flag column of a calendar row.
type Status struct {
	DataAvailable bool `json:"data_available"`
	PdfAvailable  bool `json:"pdf_available"`
	Changes       bool `json:"changes"`
	Cancelled     bool `json:"cancelled"`
}

type Competition struct {
	EventID string `json:"event_id"`
	// a display range like "26-27 Oct 2024"
	Date     string `json:"date"`
	Location string `json:"location"`
	// NSA country code
	Country    string       `json:"country"`
	Discipline []Discipline `json:"discipline"`
	// WC, TRA • WC etc
	Category  string `json:"category"`
	Gender    Gender `json:"gender"`
	Cancelled bool   `json:"cancelled"`
	Status    Status `json:"status"`
	URL       string `json:"url,omitempty"`
	IsLive    bool   `json:"is_live"`
}

type Run struct {
	// 1st, 2nd etc
	Number int `json:"number"`
	// start time, "15:04"
	Time   string `json:"time"`
	Status string `json:"status,omitempty"`
	Info   string `json:"info,omitempty"`
}

type Result struct {
	AthleteID string  `json:"athlete_id"`
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	Nation    string  `json:"nation"`
	Run1      string  `json:"run1,omitempty"`
	Run2      string  `json:"run2,omitempty"`
	Total     string  `json:"total,omitempty"`
	Diff      string  `json:"diff,omitempty"`
	FisPoints float64 `json:"fis_points"`
	CupPoints *int    `json:"cup_points,omitempty"`
}

type Race struct {
	RaceID string `json:"race_id"`
	// e.g. "5001" or "0001"
	Codex         string     `json:"codex"`
	Date          time.Time  `json:"date"`
	Discipline    Discipline `json:"discipline"`
	IsTraining    bool       `json:"is_training"`
	Gender        Gender     `json:"gender"`
	Runs          []Run      `json:"runs"`
	HasLiveTiming bool       `json:"has_live_timing"`
	LiveTimingURL string     `json:"live_timing_url,omitempty"`
	Results       []Result   `json:"results,omitempty"`
}

type TechnicalDelegate struct {
	Codex  string `json:"codex"`
	Name   string `json:"name"`
	Nation string `json:"nation"`
	TdID   string `json:"td_id"`
}

type Broadcaster struct {
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
	URL       string   `json:"url,omitempty"`
	LogoURL   string   `json:"logo_url,omitempty"`
}

type EventDetail struct {
	Competition        *Competition        `json:"competition"`
	Races              []Race              `json:"races"`
	TechnicalDelegates []TechnicalDelegate `json:"technical_delegates"`
	Broadcasters       []Broadcaster       `json:"broadcasters"`
	// document name -> download url
	Documents map[string]string `json:"documents"`
}
