package params

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/config"
)

// Persist writes every parameter change into cfg and saves it to path. Save
// failures are logged and do not undo the change. The returned function stops
// persisting.
func Persist(s *Store, cfg *config.Config, path string, log *zap.Logger) (cancel func()) {
	if log == nil {
		log = zap.NewNop()
	}
	var mu sync.Mutex
	return s.Subscribe(func(_, next Snapshot) {
		mu.Lock()
		defer mu.Unlock()

		next.ApplyTo(&cfg.DayNight)
		if err := cfg.SaveTo(path); err != nil {
			log.Warn("failed to persist parameters", zap.String("path", path), zap.Error(err))
			return
		}
		log.Debug("parameters persisted", zap.String("path", path))
	})
}
