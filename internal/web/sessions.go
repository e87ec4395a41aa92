package web

import (
	"context"
	"sync"
	"time"

	"wipertech/storefront/internal/selector"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultSessionTTL = 30 * time.Minute

type session struct {
	resolver *selector.Resolver
	lastSeen time.Time
}

// sessionStore keeps the selector sessions of the JSON API. A session
// expires once it has not been touched for ttl.
type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (st *sessionStore) create(res *selector.Resolver) string {
	id := uuid.NewString()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = &session{resolver: res, lastSeen: st.now()}

	return id
}

func (st *sessionStore) get(id string) (*selector.Resolver, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = st.now()
	return sess.resolver, true
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		sess.resolver.Close()
	}
	return ok
}

// sweep closes and drops every expired session and returns how many.
func (st *sessionStore) sweep() int {
	cutoff := st.now().Add(-st.ttl)

	var expired []*selector.Resolver
	st.mu.Lock()
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess.resolver)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, res := range expired {
		res.Close()
	}
	return len(expired)
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*session)
	st.mu.Unlock()

	for _, sess := range sessions {
		sess.resolver.Close()
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *sessionStore) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer st.closeAll()

	log.Infof("🧹 Session janitor started (ttl %s)", st.ttl)
	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 Session janitor stopped")
			return nil
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				log.Infof("🧹 Expired %d selector sessions", n)
			}
		}
	}
}

func janitorInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}
