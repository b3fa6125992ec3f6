package testinfra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// MuseTS is the NextSong event timestamp in the Muse fixture:
// 2018-11-01T21:01:46.796Z, a Thursday in ISO week 44.
const MuseTS = 1541106106796

// EventsJSONPaths maps the event log fields to staging_events columns.
const EventsJSONPaths = `{
  "jsonpaths": [
    "$['artist']",
    "$['auth']",
    "$['firstName']",
    "$['gender']",
    "$['itemInSession']",
    "$['lastName']",
    "$['length']",
    "$['level']",
    "$['location']",
    "$['method']",
    "$['page']",
    "$['registration']",
    "$['sessionId']",
    "$['song']",
    "$['status']",
    "$['ts']",
    "$['userAgent']",
    "$['userId']"
  ]
}
`

const museEvents = `{"artist":"Muse","auth":"Logged In","firstName":"Adelyn","gender":"F","itemInSession":3,"lastName":"Jordan","length":305.3,"level":"free","location":"Chicago-Naperville-Elgin, IL-IN-WI","method":"PUT","page":"NextSong","registration":1.540130971796E12,"sessionId":150,"song":"Uprising","status":200,"ts":1541106106796,"userAgent":"Mozilla/5.0","userId":"7"}
{"artist":null,"auth":"Logged Out","firstName":null,"gender":null,"itemInSession":0,"lastName":null,"length":null,"level":"free","location":null,"method":"PUT","page":"Login","registration":null,"sessionId":52,"song":null,"status":307,"ts":1541106352796,"userAgent":null,"userId":""}
`

const museSong = `{"num_songs": 1, "artist_id": "A1", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Muse", "song_id": "S1", "title": "Uprising", "duration": 305.3, "year": 2009}
`

// WriteFile writes content under dir, creating parents.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteMuseFixtures lays out the two-event, one-song scenario under dir in
// the same shape as the public dataset and returns the matching [S3] section.
func WriteMuseFixtures(t *testing.T, dir string) dwhload.S3Config {
	t.Helper()

	WriteFile(t, dir, "log_data/2018/11/2018-11-01-events.json", museEvents)
	WriteFile(t, dir, "song_data/A/A/A/TRAAAAA128F4291234.json", museSong)
	WriteFile(t, dir, "log_json_path.json", EventsJSONPaths)

	return dwhload.S3Config{
		LogData:     filepath.Join(dir, "log_data"),
		LogJSONPath: filepath.Join(dir, "log_json_path.json"),
		SongData:    filepath.Join(dir, "song_data"),
	}
}
