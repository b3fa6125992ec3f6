package db

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// ConnectionParams are the resolved settings for one warehouse session.
type ConnectionParams struct {
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	SSLMode        string
	AppName        string
	ConnectTimeout time.Duration
}

// ParamsFromConfig resolves the [CLUSTER] section into connection params.
// Redshift connections default to sslmode=require, PostgreSQL to prefer.
func ParamsFromConfig(cfg *dwhload.Config, runID string) ConnectionParams {
	sslMode := cfg.Warehouse.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
		if cfg.Warehouse.Dialect == dwhload.DialectRedshift {
			sslMode = "require"
		}
	}

	p := ConnectionParams{
		Host:           cfg.Cluster.Host,
		Port:           cfg.Cluster.DBPort,
		Database:       cfg.Cluster.DBName,
		Username:       cfg.Cluster.DBUser,
		Password:       cfg.Cluster.DBPassword,
		SSLMode:        sslMode,
		ConnectTimeout: dwhload.ConnectTimeout,
	}
	if runID != "" && cfg.Warehouse.Dialect == dwhload.DialectPostgres {
		p.AppName = "dwhload/" + runID
	}
	return p
}

// Address returns host:port.
func (p ConnectionParams) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// BuildConnectionString renders params as a postgresql:// URI.
func BuildConnectionString(p ConnectionParams) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   p.Address(),
		Path:   "/" + p.Database,
	}

	if p.Username != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		} else {
			u.User = url.User(p.Username)
		}
	}

	query := url.Values{}
	if p.SSLMode != "" {
		query.Set("sslmode", p.SSLMode)
	}
	if p.AppName != "" {
		query.Set("application_name", p.AppName)
	}
	if p.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(p.ConnectTimeout.Seconds())))
	}

	u.RawQuery = query.Encode()
	return u.String()
}
