package data

import (
	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/conf"
	"github.com/hostkit/checkin-bridge/internal/infra/lark"
	"github.com/hostkit/checkin-bridge/internal/infra/openai"
	"github.com/hostkit/checkin-bridge/internal/infra/smoobu"
)

// Repositories bundles every repo implementation behind one handle
type Repositories struct {
	Memory     repo.MemoryRepo
	Classifier repo.ClassifierRepo
	Responder  repo.ResponderRepo
	Gateway    repo.GatewayRepo
	Cleaner    repo.CleanerRepo
	Notifier   repo.NotifierRepo
	ResCache   repo.ReservationCacheRepo
}

// NewRepositories wires the external clients and stores from config
func NewRepositories(cfg *conf.Config, log zerolog.Logger) (*Repositories, error) {
	memory, err := NewMemoryRepo(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	resCache, err := NewReservationCache(cfg.Store.CacheDBPath)
	if err != nil {
		memory.Close()
		return nil, err
	}

	aiClient := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	larkClient := lark.NewClient(cfg.Lark.AppID, cfg.Lark.AppSecret)
	smoobuClient := smoobu.NewClient(cfg.Smoobu.APIKey, cfg.Smoobu.BaseURL)

	var notifier repo.NotifierRepo
	if cfg.Lark.OwnerChatID != "" {
		notifier = NewLarkNotifier(larkClient, cfg.Lark.OwnerChatID)
	} else {
		notifier = NewConsoleNotifier(log)
	}

	return &Repositories{
		Memory:     memory,
		Classifier: NewClassifierRepo(aiClient, cfg.Prompts),
		Responder:  NewResponderRepo(aiClient, cfg.Prompts),
		Gateway:    NewGatewayRepo(smoobuClient),
		Cleaner:    NewCleanerRepo(larkClient, cfg.Lark.CleanerChatID, memory),
		Notifier:   notifier,
		ResCache:   resCache,
	}, nil
}

// Close releases every owned store
func (r *Repositories) Close() error {
	var firstErr error
	if err := r.Memory.Close(); err != nil {
		firstErr = err
	}
	if err := r.ResCache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
