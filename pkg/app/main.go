package app

import (
	"cloud.google.com/go/firestore"
	"github.com/gorilla/sessions"

	"github.com/ghuser/todoreminder/pkg/cache"
	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/pkg/events"
	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/pkg/workflows"
)

// Application holds shared infrastructure for every bounded context. Both
// binaries build one and pass it to each context's Routes or wiring function.
//
// Log with the context methods so trace_id, span_id and request_id are
// attached:
//
//	app.Logger.InfoContext(ctx, "reminder scheduled", "todo_id", id)
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	Firestore      *firestore.Client         // nil unless ITEM_STORE=firestore
	TemporalClient *workflows.TemporalClient // nil unless DISPATCH_BACKEND=temporal
	SessionStore   sessions.Store            // nil in worker process
}
