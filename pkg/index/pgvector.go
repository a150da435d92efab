package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oguzatay/gundem/internal/models"
	"github.com/pgvector/pgvector-go"
)

type PGConfig struct {
	ConnString string
	TableName  string
	Dimension  int
	BatchSize  int
}

// PGStore serves the same search contract as File against a pgvector
// table. Like the file backend it is rebuilt wholesale per ingestion run,
// inside one transaction so readers never see a half-replaced table.
type PGStore struct {
	config PGConfig
	pool   *pgxpool.Pool
}

func NewPGStore(ctx context.Context, config PGConfig) (*PGStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.Dimension == 0 {
		config.Dimension = 768
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &PGStore{
		config: config,
		pool:   pool,
	}

	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PGStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			article_url TEXT NOT NULL,
			headline TEXT,
			ordinal INTEGER,
			chunk_text TEXT,
			span_start INTEGER,
			span_end INTEGER,
			inserted_at BIGSERIAL,
			embedding vector(%d)
		)`, s.config.TableName, s.config.Dimension)

	_, err = s.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		s.config.TableName, s.config.TableName)

	_, err = s.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Replace swaps the full chunk set in one transaction.
func (s *PGStore) Replace(ctx context.Context, entries []Entry) error {
	if err := validateEntries(s.config.Dimension, entries); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s", s.config.TableName)); err != nil {
		return fmt.Errorf("failed to truncate table: %v", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, article_url, headline, ordinal, chunk_text, span_start, span_end, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.config.TableName)

	for _, entry := range entries {
		c := entry.Chunk
		_, err := tx.Exec(ctx, stmt,
			c.ID(),
			c.ArticleURL,
			c.Headline,
			c.Ordinal,
			c.Text,
			c.Start,
			c.End,
			pgvector.NewVector(entry.Vector),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %v", c.ID(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (s *PGStore) Search(query []float32, fetchK int) ([]models.ScoredChunk, error) {
	if len(query) != s.config.Dimension {
		return nil, &DimensionMismatchError{Want: len(query), Got: s.config.Dimension}
	}
	if fetchK <= 0 {
		return nil, nil
	}

	ctx := context.Background()

	// <=> is cosine distance; similarity = 1 - distance. Insertion order
	// breaks exact ties, matching the file backend.
	sql := fmt.Sprintf(`
		SELECT article_url, headline, ordinal, chunk_text, span_start, span_end, embedding,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, inserted_at
		LIMIT $2`,
		s.config.TableName)

	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(query), fetchK)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %v", err)
	}
	defer rows.Close()

	var results []models.ScoredChunk
	for rows.Next() {
		var c models.Chunk
		var vec pgvector.Vector
		var score float64
		err := rows.Scan(&c.ArticleURL, &c.Headline, &c.Ordinal, &c.Text, &c.Start, &c.End, &vec, &score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		results = append(results, models.ScoredChunk{
			Chunk:  c,
			Score:  float32(score),
			Vector: vec.Slice(),
		})
	}

	return results, rows.Err()
}

func (s *PGStore) Size() int {
	var count int
	err := s.pool.QueryRow(context.Background(),
		fmt.Sprintf("SELECT count(*) FROM %s", s.config.TableName)).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
