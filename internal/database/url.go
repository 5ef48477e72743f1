package database

import "strings"

// migrateURL rewrites a postgres:// url to the pgx5:// scheme the
// golang-migrate pgx/v5 driver registers under.
func migrateURL(url string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(url, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return url
}
