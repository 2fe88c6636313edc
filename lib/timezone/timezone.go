package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Zurich")
	if err != nil {
		panic(err)
	}
}

// FIS publishes calendar dates and race start times in central
// european time, so date handling is pinned to Europe/Zurich no
// matter where the server happens to be deployed.
func Now() time.Time {
	return time.Now().In(Location)
}
