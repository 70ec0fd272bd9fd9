package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// resolveSetting reads a Setting-table override, preferring the cache and
// falling through to the store on a miss. A successful store read warms the
// cache so the next request's read stays cheap. Returns ("", false) when no
// override is configured.
func resolveSetting(
	ctx context.Context, cache interfaces.SettingCache, store interfaces.Store, key string,
) (string, bool) {
	log := logger.GetLogger(ctx).WithField("component", "retrieval")

	if cache != nil {
		val, ok, err := cache.Get(ctx, key)
		if err != nil {
			log.Warnf("setting cache read for %q failed, falling through to store: %v", key, err)
		} else if ok {
			return val, true
		}
	}

	setting, err := store.GetSetting(ctx, key)
	if err != nil {
		log.Warnf("load setting %q: %v", key, err)
		return "", false
	}
	if setting == nil {
		return "", false
	}
	if cache != nil {
		if err := cache.Set(ctx, key, setting.Value); err != nil {
			log.Warnf("warm setting cache for %q: %v", key, err)
		}
	}
	return setting.Value, true
}

// resolveSettingInt resolves an integer-valued override, ignoring (rather
// than failing the request on) a non-numeric stored value.
func resolveSettingInt(
	ctx context.Context, cache interfaces.SettingCache, store interfaces.Store, key string,
) (int, bool) {
	val, ok := resolveSetting(ctx, cache, store, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		logger.GetLogger(ctx).WithField("component", "retrieval").
			Warnf("setting %q has non-integer value %q, ignoring", key, val)
		return 0, false
	}
	return n, true
}

// UpdateSetting persists a Setting-table override and invalidates the cached
// value, so the next request re-reads it instead of serving a stale cached
// value for the rest of its TTL.
func (e *Engine) UpdateSetting(ctx context.Context, key, value string) error {
	if err := e.store.SetSetting(ctx, &types.Setting{Key: key, Value: value, UpdatedAt: time.Now()}); err != nil {
		return err
	}
	if e.settings != nil {
		if err := e.settings.Invalidate(ctx, key); err != nil {
			logger.GetLogger(ctx).WithField("component", "retrieval").
				Warnf("invalidate setting cache for %q: %v", key, err)
		}
	}
	return nil
}

// systemPrompt returns the settings.system_prompt override when configured,
// otherwise the built-in template filled in with filterNote.
func (e *Engine) systemPrompt(ctx context.Context, filterNote string) string {
	if override, ok := resolveSetting(ctx, e.settings, e.store, types.SettingSystemPrompt); ok && override != "" {
		return override
	}
	return fmt.Sprintf(systemPromptTemplate, filterNote)
}
