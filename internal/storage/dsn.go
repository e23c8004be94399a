package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Config selects and addresses a scene store. DSN wins when set;
// otherwise the connection string is built from the host fields.
type Config struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// RevisionLimit caps stored revisions per scene.
	RevisionLimit int
}

// DataSource returns the driver connection string.
func (c Config) DataSource() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case DriverSQLite:
		return "poster.db", nil
	case DriverPostgres:
		return buildPostgresDSN(c), nil
	case DriverMySQL:
		return buildMySQLDSN(c), nil
	case DriverMongo:
		return buildMongoURI(c), nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", c.Driver)
	}
}

func buildPostgresDSN(c Config) string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslMode,
	)
}

func buildMySQLDSN(c Config) string {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4",
		c.User, c.Password, c.Host, port, c.Database,
	)
	if c.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

func buildMongoURI(c Config) string {
	port := c.Port
	if port == 0 {
		port = 27017
	}
	host := fmt.Sprintf("%s:%d", c.Host, port)
	u := url.URL{Scheme: "mongodb", Host: host}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// redact hides the password in a connection string for logging.
func (c Config) redact(dsn string) string {
	if c.Password == "" {
		return dsn
	}
	dsn = strings.ReplaceAll(dsn, url.UserPassword(c.User, c.Password).String(), url.User(c.User).String()+":***")
	return strings.ReplaceAll(dsn, c.Password, "***")
}
