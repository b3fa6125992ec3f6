package dialect

import (
	"fmt"

	"github.com/vvka-141/dwhload/internal/schema"
)

// insertTable renders the transform for a final table.
//
// Dimension inserts keep one row per natural key: users keep their most
// recent event, songs and artists the first row by title or name. The
// calendar columns follow ISO-8601 weeks and a Sunday-based weekday (0-6).
func (f flavor) insertTable(table string) (string, error) {
	events := f.ident(schema.StagingEvents)
	songs := f.ident(schema.StagingSongs)

	switch table {
	case schema.Songplays:
		return f.insertSongplays(events, songs), nil

	case schema.Users:
		return fmt.Sprintf(`INSERT INTO %s (user_id, first_name, last_name, gender, level)
SELECT user_id, first_name, last_name, gender, level
FROM (
    SELECT user_id, first_name, last_name, gender, level,
           ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY ts DESC NULLS LAST) AS rn
    FROM %s
    WHERE page = 'NextSong' AND user_id IS NOT NULL
) latest
WHERE rn = 1`, f.ident(schema.Users), events), nil

	case schema.Songs:
		return fmt.Sprintf(`INSERT INTO %s (song_id, title, artist_id, year, duration)
SELECT song_id, title, artist_id, year, duration
FROM (
    SELECT song_id, title, artist_id, year, duration,
           ROW_NUMBER() OVER (PARTITION BY song_id ORDER BY title NULLS LAST, artist_id) AS rn
    FROM %s
    WHERE song_id IS NOT NULL
) firsts
WHERE rn = 1`, f.ident(schema.Songs), songs), nil

	case schema.Artists:
		return fmt.Sprintf(`INSERT INTO %s (artist_id, name, location, latitude, longitude)
SELECT artist_id, artist_name, artist_location, artist_latitude, artist_longitude
FROM (
    SELECT artist_id, artist_name, artist_location, artist_latitude, artist_longitude,
           ROW_NUMBER() OVER (PARTITION BY artist_id ORDER BY artist_name NULLS LAST, artist_location NULLS LAST) AS rn
    FROM %s
    WHERE artist_id IS NOT NULL
) firsts
WHERE rn = 1`, f.ident(schema.Artists), songs), nil

	case schema.Time:
		return fmt.Sprintf(`INSERT INTO %s (start_time, hour, day, week, month, year, weekday)
SELECT DISTINCT
    ts,
    EXTRACT(hour FROM ts),
    EXTRACT(day FROM ts),
    EXTRACT(week FROM ts),
    EXTRACT(month FROM ts),
    EXTRACT(year FROM ts),
    EXTRACT(%s FROM ts)
FROM %s
WHERE page = 'NextSong' AND ts IS NOT NULL`, f.ident(schema.Time), f.weekday, events), nil

	default:
		return "", fmt.Errorf("no transform for table %q", table)
	}
}

func (f flavor) insertSongplays(events, songs string) string {
	target := f.ident(schema.Songplays)

	if !f.numberIDs {
		return fmt.Sprintf(`INSERT INTO %s (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
SELECT DISTINCT
    e.ts,
    e.user_id,
    e.level,
    s.song_id,
    s.artist_id,
    e.session_id,
    e.location,
    e.user_agent
FROM %s e
JOIN %s s ON e.artist = s.artist_name
WHERE e.page = 'NextSong'`, target, events, songs)
	}

	return fmt.Sprintf(`INSERT INTO %s (songplay_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
SELECT
    ROW_NUMBER() OVER (ORDER BY p.start_time, p.user_id, p.session_id, p.song_id, p.artist_id) - 1,
    p.start_time,
    p.user_id,
    p.level,
    p.song_id,
    p.artist_id,
    p.session_id,
    p.location,
    p.user_agent
FROM (
    SELECT DISTINCT
        e.ts AS start_time,
        e.user_id,
        e.level,
        s.song_id,
        s.artist_id,
        e.session_id,
        e.location,
        e.user_agent
    FROM %s e
    JOIN %s s ON e.artist = s.artist_name
    WHERE e.page = 'NextSong'
) p`, target, events, songs)
}
