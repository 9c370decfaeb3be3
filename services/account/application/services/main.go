package services

import (
	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/services/account/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Account *AccountService
}

// New wires the account services on the shared Postgres pool.
func New(a *app.Application) *Services {
	return &Services{
		Account: NewAccountService(postgres.NewUserRepository(a.Db)),
	}
}
