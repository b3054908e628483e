package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// Document keys and caps of the local store.
const (
	LocalRequestsKey = "ae_requests"
	LocalViewsKey    = "ae_telemetry_views"
	MaxLocalRequests = 500
	MaxLocalViews    = 2000
)

// LocalStore mirrors submissions and page views into a single JSON file for
// the dashboard. Both lists are kept newest first and capped.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

// NewLocalStore returns a store backed by path. The file is created on the
// first write.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// AppendRequest prepends req and drops the oldest entries beyond the cap.
func (s *LocalStore) AppendRequest(req models.LocalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, views := s.load()
	requests = append([]models.LocalRequest{req}, requests...)
	if len(requests) > MaxLocalRequests {
		requests = requests[:MaxLocalRequests]
	}
	return s.save(requests, views)
}

// AppendView prepends a page view and drops the oldest beyond the cap.
func (s *LocalStore) AppendView(view models.PageView) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, views := s.load()
	views = append([]models.PageView{view}, views...)
	if len(views) > MaxLocalViews {
		views = views[:MaxLocalViews]
	}
	return s.save(requests, views)
}

// Snapshot returns both lists, newest first. A missing or corrupt file
// yields empty lists.
func (s *LocalStore) Snapshot() ([]models.LocalRequest, []models.PageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *LocalStore) load() ([]models.LocalRequest, []models.PageView) {
	requests := []models.LocalRequest{}
	views := []models.PageView{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("local store: read %s: %v", s.path, err)
		}
		return requests, views
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("local store: %s is corrupt, starting empty: %v", s.path, err)
		return requests, views
	}

	requests = decodeRequests(doc[LocalRequestsKey])
	views = decodeViews(doc[LocalViewsKey])
	return requests, views
}

// decodeRequests keeps every element that decodes as an object.
func decodeRequests(raw json.RawMessage) []models.LocalRequest {
	out := []models.LocalRequest{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var req models.LocalRequest
		if err := json.Unmarshal(item, &req); err != nil {
			continue
		}
		if req.Features == nil {
			req.Features = []string{}
		}
		out = append(out, req)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// decodeViews keeps views with a positive timestamp and a path.
func decodeViews(raw json.RawMessage) []models.PageView {
	out := []models.PageView{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var v models.PageView
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		if v.At <= 0 || v.Path == "" {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At > out[j].At
	})
	return out
}

func (s *LocalStore) save(requests []models.LocalRequest, views []models.PageView) error {
	data, err := json.Marshal(map[string]any{
		LocalRequestsKey: requests,
		LocalViewsKey:    views,
	})
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create local store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".local-store-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write local store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close local store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace local store: %w", err)
	}
	return nil
}
