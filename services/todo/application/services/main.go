package services

import (
	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/services/todo/domain/repositories"
	"github.com/ghuser/todoreminder/services/todo/infrastructure/persistence/firestore"
	"github.com/ghuser/todoreminder/services/todo/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Todo *TodoService
}

// New wires the todo application services with the configured item store.
func New(a *app.Application) *Services {
	return &Services{
		Todo: NewTodoService(NewRepository(a)),
	}
}

// NewRepository returns the item store selected by ITEM_STORE. The worker
// uses it directly for background resync.
func NewRepository(a *app.Application) repositories.TodoRepository {
	if a.Config != nil && a.Config.ItemStore == config.StoreFirestore {
		return firestore.NewTodoRepository(a.Firestore, a.EventBus, a.Logger)
	}
	return postgres.NewTodoRepository(a.Db, a.EventBus)
}
