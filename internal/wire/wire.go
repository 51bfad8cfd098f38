//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/sevigo/titleforge/internal/app"
)

func InitializeApp() (*app.App, error) {
	wire.Build(AppSet)
	return &app.App{}, nil
}
