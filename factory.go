package relay

import (
	"fmt"

	"github.com/minus-twelve/relay/storage"
	"github.com/minus-twelve/relay/types"
)

func CreateStore(cfg types.Config) (Store, error) {
	switch cfg.StoreType {
	case "", "memory":
		return storage.NewMemoryStore(cfg.Memory.MaxSessions), nil
	case "redis":
		return storage.NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("invalid store type %q", cfg.StoreType)
	}
}
