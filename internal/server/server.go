package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// Server contains the server configuration.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// DB is the database for the server.
	DB *gorm.DB

	// Store provides document storage operations on top of DB.
	Store *store.Store

	// Logger is the logger for the server.
	Logger hclog.Logger
}
