package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// Increment trace un appel à IncrementField (pour les assertions de test).
type Increment struct {
	Collection string
	ID         string
	Field      string
	Delta      int64
}

// Memory est une implémentation en mémoire de Store pour les tests.
// FailIncrements permet de forcer l'échec d'un incrément par document,
// pour vérifier l'isolation des side effects.
type Memory struct {
	mu sync.Mutex

	docs       map[string]map[string]json.RawMessage
	errorLogs  []model.LogEntry
	increments []Increment

	// FailIncrements contient les ids de documents dont IncrementField échoue.
	FailIncrements map[string]bool
	// FailErrorLogs force l'échec de InsertErrorLog.
	FailErrorLogs bool
}

func NewMemory() *Memory {
	return &Memory{
		docs:           make(map[string]map[string]json.RawMessage),
		FailIncrements: make(map[string]bool),
	}
}

func (s *Memory) collection(name string) map[string]json.RawMessage {
	c, ok := s.docs[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.docs[name] = c
	}
	return c
}

func (s *Memory) Create(ctx context.Context, collection, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.collection(collection)[id] = data
	return nil
}

func (s *Memory) Get(ctx context.Context, collection, id string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collection(collection)[id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (s *Memory) Update(ctx context.Context, collection, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collection(collection)[id]; !ok {
		return ErrNotFound
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.collection(collection)[id] = data
	return nil
}

func (s *Memory) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailIncrements[id] {
		return fmt.Errorf("forced increment failure on %s/%s", collection, id)
	}
	s.increments = append(s.increments, Increment{
		Collection: collection, ID: id, Field: field, Delta: delta,
	})

	var doc map[string]interface{}
	if data, ok := s.collection(collection)[id]; ok {
		_ = json.Unmarshal(data, &doc)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	current, _ := doc[field].(float64)
	doc[field] = current + float64(delta)
	data, _ := json.Marshal(doc)
	s.collection(collection)[id] = data
	return nil
}

func (s *Memory) InsertErrorLog(ctx context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailErrorLogs {
		return fmt.Errorf("forced error log failure")
	}
	s.errorLogs = append(s.errorLogs, entry)
	data, _ := json.Marshal(entry)
	s.collection(model.CollectionErrorLogs)[uuid.NewString()] = data
	return nil
}

func (s *Memory) LeaderboardSource(ctx context.Context) ([]model.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []model.ScoreEntry
	for id, data := range s.collection(model.CollectionUsers) {
		var user model.UserDoc
		if err := json.Unmarshal(data, &user); err != nil {
			continue
		}
		entries = append(entries, model.ScoreEntry{UserID: id, Score: float64(user.TotalXP)})
	}
	return entries, nil
}

// ErrorLogs renvoie les entrées persistées (assertions de test).
func (s *Memory) ErrorLogs() []model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LogEntry, len(s.errorLogs))
	copy(out, s.errorLogs)
	return out
}

// Increments renvoie les incréments enregistrés (assertions de test).
func (s *Memory) Increments() []Increment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Increment, len(s.increments))
	copy(out, s.increments)
	return out
}
