// Package dsn maps Data Source Names onto gorm dialectors.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrEmptyDSN is returned when an empty data source name is given.
var ErrEmptyDSN = errors.New("data source name is empty")

// Dialector selects the gorm driver from the DSN scheme.
// postgres:// and postgresql:// URLs are passed to the pgx driver verbatim,
// mysql:// URLs are rewritten into the tcp() form the mysql driver expects,
// sqlite:// (or a bare file path) opens an embedded sqlite database.
func Dialector(raw string) (gorm.Dialector, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDSN
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return postgres.Open(raw), nil
	case strings.HasPrefix(raw, "mysql://"):
		out, err := mysqlDSN(raw)
		if err != nil {
			return nil, err
		}

		return mysql.Open(out), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(raw, "sqlite://")), nil
	default:
		// plain file path, treat as embedded sqlite
		return sqlite.Open(raw), nil
	}
}

// mysqlDSN rewrites a mysql:// URL into the user:pass@tcp(host:port)/name form.
func mysqlDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse mysql dsn")
	}

	user := u.User.Username()
	pass, _ := u.User.Password()

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	name := strings.TrimPrefix(u.Path, "/")

	out := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		user,
		pass,
		host,
		port,
		name,
	)

	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}

	return out, nil
}
