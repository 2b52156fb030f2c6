package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/observability"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a store backend.
type Config struct {
	Backend string
	Dir     string        // file backend; empty means DefaultDir
	TTL     time.Duration // lifetime of new sessions; zero never expires
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open creates the store named by cfg.Backend. An empty backend selects
// the file store. The store reports to the registered observability hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		st  Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		st, err = NewFileStore(cfg.Dir)
	case BackendMemory:
		st = NewMemoryStore()
	case BackendRedis:
		st, err = NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		st, err = NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown session backend %q (want memory, file, redis or mongo)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(st, backend), nil
}

// Instrument wraps st so every operation reports to
// [observability.Store] under the given backend name.
func Instrument(st Store, backend string) Store {
	return &instrumented{Store: st, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Store.Get(ctx, id)
	if err == nil {
		observability.Store().OnLoad(ctx, s.backend, sess != nil)
	}
	return sess, err
}

func (s *instrumented) Set(ctx context.Context, sess *Session) error {
	err := s.Store.Set(ctx, sess)
	size := 0
	if data, mErr := json.Marshal(sess); mErr == nil {
		size = len(data)
	}
	observability.Store().OnSave(ctx, s.backend, size, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	if err == nil {
		observability.Store().OnDelete(ctx, s.backend)
	}
	return err
}
