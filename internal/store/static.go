package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"deskbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// Static is an in-memory topic table. It backs the executor's fallback
// path when the SQLite store is unreachable, and can be seeded from YAML.
type Static struct {
	topics []domain.Topic
}

// NewStatic creates a static table from the given topics. Nil means the
// built-in defaults.
func NewStatic(topics []domain.Topic) *Static {
	if topics == nil {
		topics = defaultTopics()
	}
	return &Static{topics: topics}
}

func defaultTopics() []domain.Topic {
	return []domain.Topic{
		{Question: "leave policy", Answer: "You can find the leave policy in the HR handbook. The short version: 20 days a year, request in the HR portal."},
		{Question: "office hours", Answer: "Core hours are 10:00 to 16:00; outside those, work when you work best."},
		{Question: "wifi password", Answer: "Ask the office manager; it rotates monthly and is posted by the front desk."},
	}
}

func (s *Static) ListAll(ctx context.Context) ([]domain.Topic, error) {
	out := make([]domain.Topic, len(s.topics))
	copy(out, s.topics)
	return out, nil
}

// FindByQuery uses the same substring policy as the SQLite store so both
// paths behave identically.
func (s *Static) FindByQuery(ctx context.Context, query string) (*domain.Topic, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	for _, t := range s.topics {
		q := strings.ToLower(t.Question)
		if strings.Contains(q, query) || strings.Contains(query, q) {
			return &t, nil
		}
	}
	return nil, nil
}

// topicFile is the on-disk YAML shape for topic seed files.
type topicFile struct {
	Topics []domain.Topic `yaml:"topics"`
}

// LoadTopicsFile reads one YAML topic file.
func LoadTopicsFile(path string) ([]domain.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	var f topicFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}
	var topics []domain.Topic
	for _, t := range f.Topics {
		if strings.TrimSpace(t.Question) == "" {
			continue
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// LoadTopicsDir reads every .yaml/.yml file in dir. A missing directory is
// not an error; unreadable files are logged and skipped.
func LoadTopicsDir(dir string, logger *slog.Logger) ([]domain.Topic, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("topics directory does not exist, skipping", "dir", dir)
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read topics dir: %w", err)
	}

	var topics []domain.Topic
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		loaded, err := LoadTopicsFile(path)
		if err != nil {
			logger.Warn("cannot load topics file", "path", path, "err", err)
			continue
		}
		logger.Info("loaded topics file", "path", path, "topics", len(loaded))
		topics = append(topics, loaded...)
	}
	return topics, nil
}
