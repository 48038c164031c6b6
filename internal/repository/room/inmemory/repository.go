package inmemory

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/randstr"
)

const (
	idLength    = 8
	maxAttempts = 10
)

var idLetters = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

type idGenerator interface {
	GenerateRandomString(length int) string
}

type repo struct {
	rooms  map[string]*domain.Room
	mu     sync.RWMutex
	gen    idGenerator
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return newRepo(randstr.New(idLetters), logger)
}

func newRepo(gen idGenerator, logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*domain.Room),
		gen:    gen,
		logger: logger,
	}
}

func normalizeId(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Create registers a new room under a fresh id.
func (r *repo) Create(hostName, hostToken string, now time.Time) (*domain.Room, error) {
	funcName := "room.inmemory.Create"
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := r.gen.GenerateRandomString(idLength)
		if _, ok := r.rooms[id]; ok {
			r.logger.Debug(funcName, "collision", id, "attempt", attempt)
			continue
		}

		rm := domain.NewRoom(id, hostToken, hostName, now)
		r.rooms[id] = rm

		r.logger.Debug(funcName, "result", id)
		return rm, nil
	}

	r.logger.Info(funcName, "error", room.ErrCodeSpaceExhausted)
	return nil, room.ErrCodeSpaceExhausted
}

func (r *repo) Get(id string) (*domain.Room, error) {
	funcName := "room.inmemory.Get"
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[normalizeId(id)]
	if !ok {
		r.logger.Debug(funcName, "id", id, "error", room.ErrRoomNotFound)
		return nil, room.ErrRoomNotFound
	}

	return rm, nil
}

// Delete removes the room from the map. It does not touch the room itself.
func (r *repo) Delete(id string) bool {
	funcName := "room.inmemory.Delete"
	r.mu.Lock()
	defer r.mu.Unlock()

	id = normalizeId(id)
	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)

	r.logger.Debug(funcName, "id", id)
	return true
}

// Update runs fn with the room locked. A closed room is reported as not
// found, and a room closed by fn leaves the map before its lock is released.
func (r *repo) Update(id string, fn func(rm *domain.Room) error) error {
	rm, err := r.Get(id)
	if err != nil {
		return err
	}

	return r.UpdateRoom(rm, fn)
}

// UpdateRoom is Update for a room the caller already holds.
func (r *repo) UpdateRoom(rm *domain.Room, fn func(rm *domain.Room) error) error {
	rm.Lock()
	defer rm.Unlock()

	if rm.IsClosed() {
		return room.ErrRoomNotFound
	}

	err := fn(rm)
	if rm.IsClosed() {
		r.remove(rm)
	}

	return err
}

// remove drops rm only if it is still the registered instance for its id.
func (r *repo) remove(rm *domain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[rm.Id()] == rm {
		delete(r.rooms, rm.Id())
		r.logger.Debug("room.inmemory.remove", "id", rm.Id())
	}
}

func (r *repo) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
