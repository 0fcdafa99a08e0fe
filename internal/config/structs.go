package config

import (
	"github.com/dealerdesk/dealerdesk/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	Log       logger.Log
	Storage   Storage
	Seed      Seed
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Storage selects and parameterizes the persistence backend.
// Precedence when several are configured: Remote.DSN, then Blob.Token,
// then the local snapshot file.
type Storage struct {
	DataDir    string // directory holding the local snapshot file
	FileName   string // snapshot file name, defaults to app.snapshot
	Restricted bool   // read-only filesystem except the OS temp dir
	Ephemeral  bool   // request-scoped runtime, no background continuation
	Remote     Remote
	Blob       Blob
}

// Remote holds the relational backend settings.
type Remote struct {
	DSN string // postgres://, mysql:// or sqlite:// data source name
}

// Blob holds the blob backend settings.
type Blob struct {
	Endpoint string // base URL of the blob service
	Token    string // read-write bearer token
	Key      string // blob name, defaults to app.snapshot
	Access   string // requested access level, defaults to private
}

// Seed holds the data seeding settings.
type Seed struct {
	TemplateFile string // optional on-disk default template content
}
