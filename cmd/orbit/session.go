package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/amonks/orbit/internal/config"
	"github.com/amonks/orbit/internal/logging"
	"github.com/amonks/orbit/internal/paths"
	"github.com/amonks/orbit/internal/slot"
	"github.com/amonks/orbit/task"
)

// session bundles what a command needs: configuration, a logger, and the
// task store on top of the configured slot.
type session struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	slot   slot.Slot
	store  *task.Store
}

func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	storage := cfg.Storage
	if rootEphemeral {
		storage.Backend = slot.BackendMemory
	}
	backend, err := slot.Open(storage)
	if err != nil {
		return nil, err
	}

	store := task.Open(backend, task.Options{
		OnLoadError: func(err error) {
			logger.Warnw("could not load saved tasks; starting with an empty list", "backend", storage.Backend, "error", err)
		},
	})

	return &session{cfg: cfg, logger: logger, slot: backend, store: store}, nil
}

// Close releases the slot and flushes the logger.
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.slot.Close()
}

// resolve expands an ID prefix to a stored task.
func (s *session) resolve(ref string) (task.Task, error) {
	id, err := s.store.Resolve(ref)
	if err != nil {
		return task.Task{}, err
	}
	item, ok := s.store.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrTaskNotFound, ref)
	}
	return item, nil
}

// highlighter returns a function that highlights unique ID prefixes.
func (s *session) highlighter() func(string) string {
	return taskHighlighter(s.store.PrefixLengths())
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}

	value := strings.TrimRight(string(input), "\r\n")
	return value, nil
}
