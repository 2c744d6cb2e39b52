// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

// DSN is the libpq keyword string for the postgres driver. Sessions run in
// UTC so server timestamps order the same on every instance.
func (d *DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"dbname=" + d.Database,
		"sslmode=" + d.SSLMode,
		"TimeZone=UTC",
		"application_name=barter-backend",
	}
	if d.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteDSNValue(d.Password)))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes values containing spaces or quotes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
