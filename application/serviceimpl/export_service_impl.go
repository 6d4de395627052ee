package serviceimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"taskhub/domain/dto"
	"taskhub/domain/ports"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
)

const snapshotTimeLayout = "20060102T150405Z"

type ExportServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	storage  ports.ObjectStorage
	prefix   string
	now      func() time.Time
}

func NewExportService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	storage ports.ObjectStorage,
	prefix string,
) services.ExportService {
	if prefix == "" {
		prefix = "snapshots"
	}
	return &ExportServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		storage:  storage,
		prefix:   prefix,
		now:      time.Now,
	}
}

func (s *ExportServiceImpl) Export(ctx context.Context) (*dto.ExportResult, error) {
	users, err := s.userRepo.List(ctx, &query.Query{})
	if err != nil {
		return nil, apperrors.Internal("Failed to load users", err)
	}
	tasks, err := s.taskRepo.List(ctx, &query.Query{})
	if err != nil {
		return nil, apperrors.Internal("Failed to load tasks", err)
	}

	dir := path.Join(s.prefix, s.now().UTC().Format(snapshotTimeLayout))
	result := &dto.ExportResult{
		Provider: s.storage.Provider(),
		Prefix:   dir,
		Users:    len(users),
		Tasks:    len(tasks),
	}

	files := []struct {
		name string
		data any
	}{
		{"users.json", dto.UsersToUserResponses(users)},
		{"tasks.json", dto.TasksToTaskResponses(tasks)},
	}
	for _, f := range files {
		body, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return nil, apperrors.Internal("Failed to encode snapshot", err)
		}
		key := path.Join(dir, f.name)
		url, err := s.storage.Put(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
		if err != nil {
			logger.ErrorContext(ctx, "Failed to upload snapshot", "key", key, "error", err)
			return nil, apperrors.Internal("Failed to upload snapshot", err)
		}
		result.Objects = append(result.Objects, url)
	}

	logger.InfoContext(ctx, "Snapshot exported", "prefix", dir, "users", result.Users, "tasks", result.Tasks)
	return result, nil
}
