package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"estate-intake/internal/clients"
)

// StatusService reads the redis-cached generation records for the admin
// dashboard feed.
type StatusService struct {
	redis *clients.RedisClient
}

func NewStatusService(redis *clients.RedisClient) *StatusService {
	return &StatusService{
		redis: redis,
	}
}

func (s *StatusService) GetGenerations(ctx context.Context) ([]interface{}, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.redis.SMembers(ctx, generationSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation keys: %w", err)
	}

	var statuses []GenerationStatus
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if err != nil {
			continue
		}

		var status GenerationStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	var generations []interface{}
	for _, status := range statuses {
		generations = append(generations, statusMap(status))
	}

	return generations, nil
}

func (s *StatusService) GetGeneration(ctx context.Context, key string) (interface{}, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	data, err := s.redis.Get(ctx, key)
	if err != nil {
		return nil, errors.New("generation not found")
	}

	var status GenerationStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to parse generation status: %w", err)
	}

	return statusMap(status), nil
}

func statusMap(status GenerationStatus) map[string]interface{} {
	return map[string]interface{}{
		"key":            status.Key,
		"application_id": status.ApplicationID,
		"progress":       status.Progress,
		"stage":          status.Stage,
		"error":          status.Error,
		"pdf_key":        status.PDFKey,
		"created_at":     humanizeAgo(status.Created),
	}
}

func humanizeAgo(t time.Time) string {
	now := time.Now()
	if t.After(now) {
		return "just now"
	}

	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute", "minutes"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour", "hours"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day", "days"))
	}
	return t.Format("02.01.2006 15:04")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
