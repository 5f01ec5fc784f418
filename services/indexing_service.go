package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"

	"github.com/itish2003/supportbot/metrics"
	"github.com/itish2003/supportbot/models"
	"github.com/itish2003/supportbot/store"
)

// ErrNoDocuments is returned by Ingest when the folder holds no ingestible text.
var ErrNoDocuments = errors.New("no documents found")

// FileIndexingService handles scanning, chunking, and embedding files.
type FileIndexingService struct {
	store   store.VectorStore
	chunker Chunker
	metrics *metrics.Metrics
}

// NewFileIndexingService creates a new indexing service.
func NewFileIndexingService(vs store.VectorStore, chunker Chunker, m *metrics.Metrics) *FileIndexingService {
	return &FileIndexingService{
		store:   vs,
		chunker: chunker,
		metrics: m,
	}
}

// LoadDocuments reads and chunks every supported file under dir.
func (s *FileIndexingService) LoadDocuments(dir string) ([]models.Chunk, error) {
	files, err := FindDocuments(dir)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	for _, path := range files {
		fileChunks, err := s.chunkFile(path)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, fileChunks...)
	}
	return chunks, nil
}

func (s *FileIndexingService) chunkFile(path string) ([]models.Chunk, error) {
	text, err := ExtractTextFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	parts, err := s.chunker.Split(text)
	if err != nil {
		return nil, fmt.Errorf("could not chunk %s: %w", path, err)
	}

	title := filepath.Base(path)
	chunks := make([]models.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = models.Chunk{
			ID:     NewChunkID(title, i),
			Text:   part,
			Source: path,
			Title:  title,
		}
	}
	logger.Debugw("INDEXER: split file", "path", path, "chunks", len(chunks))
	return chunks, nil
}

// Ingest replaces the collection contents with the chunks of every document
// under dir and returns the number of chunks written.
func (s *FileIndexingService) Ingest(ctx context.Context, dir string) (int, error) {
	logger.Infof("INDEXER: Loading documents from %s", dir)

	chunks, err := s.LoadDocuments(dir)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	return s.Replace(ctx, chunks)
}

// Replace swaps the collection contents for chunks. Clearing is best effort
// and the clear and the write are not atomic: a failure between them leaves
// the collection partially wiped.
func (s *FileIndexingService) Replace(ctx context.Context, chunks []models.Chunk) (int, error) {
	start := time.Now()
	logger.Infof("INDEXER: Loaded %d chunks", len(chunks))

	if err := s.clearCollection(ctx); err != nil {
		s.metrics.RecordClearFailure()
		logger.Warnw("INDEXER: could not clear previous data, continuing", "error", err.Error())
	}

	if err := s.store.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to add chunks: %w", err)
	}
	s.metrics.RecordIngest(len(chunks))
	logger.Infow("INDEXER: ingestion finished", "chunks", len(chunks), "duration", time.Since(start).String())
	return len(chunks), nil
}

func (s *FileIndexingService) clearCollection(ctx context.Context) error {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return s.store.Delete(ctx, ids)
}

// IndexFile replaces the chunks of a single file.
func (s *FileIndexingService) IndexFile(ctx context.Context, path string) error {
	chunks, err := s.chunkFile(path)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBySource(ctx, path); err != nil {
		return fmt.Errorf("failed to delete old version of %s: %w", path, err)
	}
	if err := s.store.Add(ctx, chunks); err != nil {
		return fmt.Errorf("failed to add chunks of %s: %w", path, err)
	}
	s.metrics.RecordIngest(len(chunks))
	return nil
}

// RemoveFile drops every chunk that came from path.
func (s *FileIndexingService) RemoveFile(ctx context.Context, path string) error {
	return s.store.DeleteBySource(ctx, path)
}

// WatchDirectory re-indexes supported files under dirPath as they change
// until ctx is cancelled. Subdirectories created while watching are added.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTree(watcher, dirPath); err != nil {
		return err
	}
	logger.Infof("WATCHER: Watching directory: %s", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorw("WATCHER: watch error", "error", err.Error())

		case <-ctx.Done():
			logger.Infof("WATCHER: Context cancelled, shutting down watcher.")
			return nil
		}
	}
}

func (s *FileIndexingService) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addWatchTree(watcher, event.Name); err != nil {
				logger.Warnw("WATCHER: could not watch new directory", "path", event.Name, "error", err.Error())
			}
			return
		}
	}
	if !isSupportedFile(event.Name) {
		return
	}

	switch {
	// Editors often save through create+rename, so Create and Write are
	// handled the same way.
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		logger.Infof("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
		if err := s.IndexFile(ctx, event.Name); err != nil {
			logger.Errorw("WATCHER: failed to index file", "path", event.Name, "error", err.Error())
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		logger.Infof("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
		if err := s.RemoveFile(ctx, event.Name); err != nil {
			logger.Errorw("WATCHER: failed to delete records", "path", event.Name, "error", err.Error())
		}
	}
}

// addWatchTree adds root and all of its subdirectories, skipping hidden ones.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add path to watcher: %w", err)
		}
		return nil
	})
}
