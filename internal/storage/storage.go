package storage

import (
	"context"
	"errors"

	"github.com/axz356574-a11y/Confession/internal/models"
)

// ErrNotFound is returned when a confession ID is unknown.
var ErrNotFound = errors.New("confession not found")

// Storage is the confession archive. The bot writes every confession and
// anonymous reply through it; admins can audit recent entries.
type Storage interface {
	SaveConfession(ctx context.Context, confession *models.Confession) error
	GetConfession(ctx context.Context, id string) (*models.Confession, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Confession, error)
	Close() error
}
