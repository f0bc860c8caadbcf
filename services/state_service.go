package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"questifyAPI/internal/identity"
	"questifyAPI/internal/progression"
	"questifyAPI/internal/remote"
	"questifyAPI/internal/store"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/user"
	"questifyAPI/middleware"
)

const (
	sessionIdleTTL = 30 * time.Minute
	persistTimeout = 10 * time.Second
)

// Action applies one progression reducer to a snapshot. Handlers build
// these as closures over request payloads.
type Action func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome)

// Session owns one user's current snapshot. The mutex serializes every
// action against it; reads hand out the immutable snapshot pointer.
type Session struct {
	userID   string
	mu       sync.Mutex
	state    *appstate.AppState
	lastSeen time.Time
}

// StateService is the dispatch core: a lazy registry of per-user
// sessions in front of the local store and the optional Firestore
// mirror. Every access runs the daily rollover check first; every
// committed snapshot is persisted in the background and fanned out to
// watchers and the notification feed.
type StateService struct {
	store    store.Store
	remote   *remote.Store
	hub      *WatchHub
	notifier *NotificationService

	mu       sync.Mutex
	sessions map[string]*Session

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewStateService(st store.Store, rem *remote.Store) *StateService {
	svc := &StateService{
		store:    st,
		remote:   rem,
		sessions: make(map[string]*Session),
		stopChan: make(chan struct{}),
	}
	go svc.run()
	return svc
}

// SetWatchHub injects the websocket fan-out from main.go.
func (s *StateService) SetWatchHub(hub *WatchHub) {
	s.hub = hub
}

// SetNotifier injects the notification feed from main.go.
func (s *StateService) SetNotifier(n *NotificationService) {
	s.notifier = n
}

// Dispatch runs one action against the user's session: rollover check,
// reducer, pointer swap, then background persistence and side-effects.
// The returned snapshot is the committed one; name labels the action in
// metrics.
func (s *StateService) Dispatch(ctx context.Context, userID, name string, action Action) (*appstate.AppState, progression.Outcome, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, progression.NoOutcome(), err
	}

	now := time.Now()
	sess.mu.Lock()
	loc := locationFor(sess.state)
	changed := false
	if rolled, ok := progression.ApplyDailyReset(sess.state, now, loc); ok {
		sess.state = rolled
		changed = true
	}

	next, out := action(sess.state, now, loc)
	if next != sess.state {
		sess.state = next
		changed = true
	}
	st := sess.state
	sess.lastSeen = now
	sess.mu.Unlock()

	if changed {
		s.persist(userID, st)
		if s.hub != nil {
			s.hub.Publish(userID, st, &out)
		}
	}
	middleware.RecordAction(name, out.XPGained, out.LeveledUp, len(out.UnlockedBadges))
	if s.notifier != nil {
		go s.notifier.HandleOutcome(userID, out)
	}

	return st, out, nil
}

// Current returns the user's snapshot after the rollover check. A
// rollover that fires here persists and broadcasts like any other
// committed change.
func (s *StateService) Current(ctx context.Context, userID string) (*appstate.AppState, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess.mu.Lock()
	changed := false
	if rolled, ok := progression.ApplyDailyReset(sess.state, now, locationFor(sess.state)); ok {
		sess.state = rolled
		changed = true
	}
	st := sess.state
	sess.lastSeen = now
	sess.mu.Unlock()

	if changed {
		s.persist(userID, st)
		if s.hub != nil {
			s.hub.Publish(userID, st, nil)
		}
	}
	return st, nil
}

// Bootstrap makes sure a freshly signed-up or signed-in user has a real
// user block in their snapshot. Existing snapshots keep their profile
// edits; only an anonymous snapshot gets replaced with a new one.
func (s *StateService) Bootstrap(ctx context.Context, userID string, id *identity.Identity) (*appstate.AppState, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess.mu.Lock()
	changed := false
	if sess.state.User == nil || sess.state.User.ID == "" {
		sess.state = appstate.New(&user.User{
			ID:    userID,
			Name:  id.DisplayName,
			Email: id.Email,
		}, now)
		changed = true
	} else if sess.state.User.ID != userID {
		next := sess.state.Clone()
		next.User.ID = userID
		next.UpdatedAt = now
		sess.state = next
		changed = true
	}
	st := sess.state
	sess.lastSeen = now
	sess.mu.Unlock()

	if changed {
		s.persist(userID, st)
	}
	return st, nil
}

// Logout resets the in-memory session and evicts it. The persisted
// snapshot is left alone so the next sign-in restores progress; only
// the server-side actor forgets the user.
func (s *StateService) Logout(ctx context.Context, userID string) (*appstate.AppState, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, _ := progression.Logout(sess.state, time.Now())
	sess.mu.Unlock()

	s.evict(userID, sess)
	return next, nil
}

// SessionCount reports how many user sessions are resident.
func (s *StateService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stop halts the background sweeper.
func (s *StateService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *StateService) session(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	st, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		// Lost the race to another request; its load wins.
		return sess, nil
	}
	sess := &Session{userID: userID, state: st, lastSeen: time.Now()}
	s.sessions[userID] = sess
	middleware.SetActiveSessions(len(s.sessions))
	return sess, nil
}

// loadState fills a fresh session: the cloud copy is the durable one,
// so a remote snapshot wins over the local row when both exist. A
// remote failure degrades to the local copy rather than blocking the
// user.
func (s *StateService) loadState(ctx context.Context, userID string) (*appstate.AppState, error) {
	remoteState, err := s.remote.Load(ctx, userID)
	if err != nil {
		log.Printf("Failed to load remote snapshot for user %s: %v", userID, err)
	} else if remoteState != nil {
		return remoteState, nil
	}

	local, err := s.store.LoadSnapshot(ctx, appstate.Key(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if local != nil {
		return local, nil
	}
	return appstate.Default(), nil
}

// persist writes the committed snapshot to the local store and the
// remote mirror in the background. Errors are logged and never reach
// the caller; the in-memory copy stays authoritative until the next
// write.
func (s *StateService) persist(userID string, st *appstate.AppState) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.store.SaveSnapshot(ctx, appstate.Key(userID), st); err != nil {
			log.Printf("Failed to save snapshot for user %s: %v", userID, err)
		}
		if err := s.remote.Save(ctx, userID, st); err != nil {
			log.Printf("Failed to save remote snapshot for user %s: %v", userID, err)
		}
	}()
}

func (s *StateService) evict(userID string, sess *Session) {
	s.mu.Lock()
	if cur, ok := s.sessions[userID]; ok && cur == sess {
		delete(s.sessions, userID)
	}
	middleware.SetActiveSessions(len(s.sessions))
	s.mu.Unlock()
}

func (s *StateService) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

// sweep applies the rollover check to live sessions so midnight flips
// even for users who stay connected without acting, and evicts sessions
// idle past the TTL.
func (s *StateService) sweep() {
	now := time.Now()

	s.mu.Lock()
	live := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen) > sessionIdleTTL
		var st *appstate.AppState
		if !idle {
			if rolled, ok := progression.ApplyDailyReset(sess.state, now, locationFor(sess.state)); ok {
				sess.state = rolled
				st = rolled
			}
		}
		userID := sess.userID
		sess.mu.Unlock()

		if idle {
			s.evict(userID, sess)
		} else if st != nil {
			s.persist(userID, st)
			if s.hub != nil {
				s.hub.Publish(userID, st, nil)
			}
		}
	}
}

// locationFor resolves the user's IANA timezone, falling back to UTC
// when unset or unknown.
func locationFor(st *appstate.AppState) *time.Location {
	if st == nil || st.User == nil || st.User.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(st.User.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
