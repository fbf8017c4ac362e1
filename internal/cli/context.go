// Package cli provides the command-line interface for the harvest application.
package cli

import (
	"github.com/keywordlab/harvest/internal/app"
)

// Global reference shared by the commands, set up in PersistentPreRunE.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application set up for the current invocation.
func GetApp() *app.Application {
	return globalApp
}
