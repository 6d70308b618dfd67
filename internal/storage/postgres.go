package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/axz356574-a11y/Confession/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStorage is the durable confession archive.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL confession archive",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SaveConfession(ctx context.Context, confession *models.Confession) error {
	query := `
		INSERT INTO confessions (id, number, author_id, content, reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		confession.ID,
		confession.Number,
		confession.AuthorID,
		confession.Content,
		confession.Reply,
		confession.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving confession: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetConfession(ctx context.Context, id string) (*models.Confession, error) {
	query := `
		SELECT id, number, author_id, content, reply, created_at
		FROM confessions
		WHERE id = $1`

	confession := &models.Confession{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&confession.ID,
		&confession.Number,
		&confession.AuthorID,
		&confession.Content,
		&confession.Reply,
		&confession.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying confession: %w", err)
	}
	return confession, nil
}

func (s *PostgresStorage) ListRecent(ctx context.Context, limit int) ([]*models.Confession, error) {
	query := `
		SELECT id, number, author_id, content, reply, created_at
		FROM confessions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying confessions: %w", err)
	}
	defer rows.Close()

	var confessions []*models.Confession
	for rows.Next() {
		confession := &models.Confession{}
		err := rows.Scan(
			&confession.ID,
			&confession.Number,
			&confession.AuthorID,
			&confession.Content,
			&confession.Reply,
			&confession.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning confession: %w", err)
		}
		confessions = append(confessions, confession)
	}

	return confessions, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
