package deps

import (
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/persist"
	"github.com/linkdeck/linkdeck/internal/scheduler"
	"github.com/linkdeck/linkdeck/internal/store"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time  // for testing, defaults to time.Now
	AllowedHosts []string          // Host headers allowed to access the server
	Board        *store.Board      // Canonical in-memory item collection
	Local        *persist.File     // Local snapshot, the durability floor
	Mirror       *scheduler.Mirror // Remote mirror (nil in local-only mode)
}
