package config

import (
	"net/url"
	"strings"
)

// DSN returns the connection string for both the engine pool and the
// migration runner, with the prepared-binary-result toggle folded in. An
// explicit disable_prepared_binary_result value in DB_URL always wins.
func (c Config) DSN() string {
	if !c.DBDisablePreparedBinary {
		return c.DBURL
	}

	parsed, err := url.Parse(c.DBURL)
	if err != nil || parsed == nil {
		return c.DBURL
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// DatabaseName extracts the database name from DB_URL for log and trace
// attributes. Both URL and key=value connection strings are understood;
// anything unparseable yields an empty name rather than an error.
func (c Config) DatabaseName() string {
	raw := strings.TrimSpace(c.DBURL)

	parsed, err := url.Parse(raw)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(raw) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		if name := strings.Trim(strings.TrimPrefix(token, "dbname="), `"'`); name != "" {
			return name
		}
	}

	return ""
}
