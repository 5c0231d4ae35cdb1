package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/observability"
	"gorm.io/datatypes"
)

// cachedSessionRepository keeps recently used sessions in memory so that
// authenticated requests do not hit the database every time.
type cachedSessionRepository struct {
	next    SessionRepository
	cache   *lru.LRU[string, model.Session]
	metrics *observability.Metrics
}

func NewCachedSessionRepository(next SessionRepository, size int, ttl time.Duration, metrics *observability.Metrics) SessionRepository {
	if size < 1 {
		size = 1
	}
	return &cachedSessionRepository{
		next:    next,
		cache:   lru.NewLRU[string, model.Session](size, nil, ttl),
		metrics: metrics,
	}
}

func (r *cachedSessionRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.next.Create(ctx, session); err != nil {
		return err
	}
	r.cache.Add(session.ID, *session)
	return nil
}

func (r *cachedSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := r.cache.Get(id); ok {
		if s.Expired(time.Now()) {
			r.cache.Remove(id)
			return nil, nil
		}
		if r.metrics != nil {
			r.metrics.SessionCacheHitsTotal.Inc()
		}
		return &s, nil
	}
	if r.metrics != nil {
		r.metrics.SessionCacheMissesTotal.Inc()
	}

	session, err := r.next.FindByID(ctx, id)
	if err != nil || session == nil {
		return session, err
	}
	r.cache.Add(id, *session)
	return session, nil
}

func (r *cachedSessionRepository) UpdateUser(ctx context.Context, id string, user datatypes.JSON) error {
	r.cache.Remove(id)
	return r.next.UpdateUser(ctx, id, user)
}

func (r *cachedSessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.next.Delete(ctx, id)
}

func (r *cachedSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.next.DeleteExpired(ctx, now)
}
