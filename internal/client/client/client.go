package client

import (
	"context"

	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
)

type Client interface {
	VerifyToken(ctx context.Context, token string) (*models.Identity, error)
	Login(ctx context.Context, username string, password []byte) (string, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	Ping(ctx context.Context) error
}
