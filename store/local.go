package store

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/models"
)

// LocalDBFile is the database file created inside the storage path.
const LocalDBFile = "vectors.db"

type chunkRecord struct {
	Collection string    `gorm:"primaryKey;size:128"`
	ID         string    `gorm:"primaryKey;size:512"`
	Document   string    `gorm:"type:text;not null"`
	Title      string    `gorm:"size:512"`
	Source     string    `gorm:"index"`
	Embedding  []float32 `gorm:"type:text;serializer:json"`
}

func (chunkRecord) TableName() string { return "chunks" }

// LocalStore keeps the collection in an SQLite file and answers queries by
// exhaustive cosine similarity.
type LocalStore struct {
	db         *gorm.DB
	collection string
	embedder   llm.Embedder
	batch      int
}

// NewLocalStore opens (creating if needed) the store under dir.
func NewLocalStore(dir, collection string, embedder llm.Embedder, batch int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage path %s: %w", dir, err)
	}
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, LocalDBFile)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.AutoMigrate(&chunkRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &LocalStore{db: db, collection: collection, embedder: embedder, batch: batch}, nil
}

func (s *LocalStore) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("collection = ?", s.collection)
}

// Query implements VectorStore.
func (s *LocalStore) Query(ctx context.Context, text string, topK int) ([]models.RetrievalHit, error) {
	if topK <= 0 {
		return nil, nil
	}
	query, err := llm.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	var records []chunkRecord
	if err := s.scoped(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}

	type scored struct {
		record *chunkRecord
		score  float64
	}
	ranked := make([]scored, len(records))
	for i := range records {
		ranked[i] = scored{record: &records[i], score: cosine(query, records[i].Embedding)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	hits := make([]models.RetrievalHit, 0, min(topK, len(ranked)))
	for _, r := range ranked[:min(topK, len(ranked))] {
		hits = append(hits, models.RetrievalHit{
			Text:     r.record.Document,
			Metadata: recordMetadata(r.record),
		})
	}
	return hits, nil
}

// Add implements VectorStore.
func (s *LocalStore) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedBatched(ctx, s.embedder, texts, s.batch)
	if err != nil {
		return err
	}

	records := make([]chunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = chunkRecord{
			Collection: s.collection,
			ID:         c.ID,
			Document:   c.Text,
			Title:      c.Title,
			Source:     c.Source,
			Embedding:  vectors[i],
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("failed to add records to local store: %w", err)
	}
	return nil
}

// IDs implements VectorStore.
func (s *LocalStore) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.scoped(ctx).Model(&chunkRecord{}).Order("rowid").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	return ids, nil
}

// Delete implements VectorStore.
func (s *LocalStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.scoped(ctx).Where("id IN ?", ids).Delete(&chunkRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// DeleteBySource implements VectorStore.
func (s *LocalStore) DeleteBySource(ctx context.Context, source string) error {
	if err := s.scoped(ctx).Where("source = ?", source).Delete(&chunkRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete records for %s: %w", source, err)
	}
	return nil
}

// List implements VectorStore.
func (s *LocalStore) List(ctx context.Context) ([]models.StoredChunk, error) {
	var records []chunkRecord
	if err := s.scoped(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	out := make([]models.StoredChunk, len(records))
	for i := range records {
		out[i] = models.StoredChunk{
			ID:       records[i].ID,
			Text:     records[i].Document,
			Metadata: recordMetadata(&records[i]),
		}
	}
	return out, nil
}

// Count implements VectorStore.
func (s *LocalStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.scoped(ctx).Model(&chunkRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(n), nil
}

// Close implements VectorStore.
func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func recordMetadata(r *chunkRecord) map[string]any {
	return map[string]any{
		models.MetaTitle:  r.Title,
		models.MetaSource: r.Source,
	}
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ VectorStore = (*LocalStore)(nil)
