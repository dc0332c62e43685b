package impl

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"guarita/internal/domain/entity"
	domainerrors "guarita/internal/domain/errors"
	"guarita/internal/domain/repository"
	"guarita/internal/domain/service"
	"guarita/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Timing fallbacks, used when the configuration in force carries absent or
// non-positive values. Sessions must never start with a zero countdown.
const (
	fallbackAdvogadoMinutes   = 180
	fallbackEstagiarioMinutes = 120
)

var (
	fallbackWarningsAdv = []int{150, 120, 90, 30, 10}
	fallbackWarningsEst = []int{90, 60, 30, 10}
)

// sessionService implements the SessionUsecase interface. At most one
// session exists at a time; every teardown trigger funnels through the
// same release path.
type sessionService struct {
	access       usecase.AccessUsecase
	trail        repository.AuditTrail
	presenter    service.Presenter
	logger       *slog.Logger
	tickInterval time.Duration

	mu          sync.Mutex
	active      *activeSession
	subscribers map[int]func(entity.SessionEvent)
	nextSubID   int
}

// activeSession is the mutable countdown state. RemainingSeconds inside the
// snapshot is owned exclusively by the tick loop and the release path.
type activeSession struct {
	snapshot entity.SessionSnapshot
	fired    map[int]bool
	stop     chan struct{}
}

// SessionServiceParams holds dependencies for the session service, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Access    usecase.AccessUsecase
	Trail     repository.AuditTrail
	Presenter service.Presenter
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return newSessionService(params, time.Second)
}

func newSessionService(params SessionServiceParams, tickInterval time.Duration) *sessionService {
	return &sessionService{
		access:       params.Access,
		trail:        params.Trail,
		presenter:    params.Presenter,
		logger:       params.Logger,
		tickInterval: tickInterval,
		subscribers:  make(map[int]func(entity.SessionEvent)),
	}
}

// Start activates a session for an authenticated user. The duration and
// warning schedule are taken from the configuration in force right now; a
// later config reload never touches a running countdown.
func (srv *sessionService) Start(user entity.SessionUser) (*entity.SessionSnapshot, error) {
	timing := srv.access.Context().Session

	srv.mu.Lock()
	if srv.active != nil {
		srv.mu.Unlock()

		return nil, domainerrors.ErrSessionActive
	}

	totalSeconds := sessionMinutes(timing, user.Role) * 60
	snapshot := entity.SessionSnapshot{
		ID:               uuid.New(),
		User:             user,
		StartedAt:        time.Now().UTC(),
		TotalSeconds:     totalSeconds,
		RemainingSeconds: totalSeconds,
		WarningSchedule:  buildWarningSchedule(warningMinutes(timing, user.Role), totalSeconds),
	}

	session := &activeSession{
		snapshot: snapshot,
		fired:    make(map[int]bool),
		stop:     make(chan struct{}),
	}
	srv.active = session
	srv.mu.Unlock()

	go srv.run(session.stop)

	srv.logger.Info("Session started",
		slog.String("id", snapshot.ID.String()),
		slog.String("user", user.Name),
		slog.String("role", user.Role.String()),
		slog.Int("totalSeconds", totalSeconds),
	)

	srv.presenter.CreateSessionWidget()
	srv.emit(entity.SessionEvent{Kind: entity.EventStarted, Snapshot: snapshot})

	result := snapshot

	return &result, nil
}

// sessionMinutes resolves the session duration for a role, falling back to
// the hard-coded defaults when the configured value is absent or invalid.
func sessionMinutes(timing entity.SessionConfig, role entity.Role) int {
	if minutes := timing.MinutesFor(role); minutes > 0 {
		return minutes
	}
	if role == entity.RoleEstagiario {
		return fallbackEstagiarioMinutes
	}

	return fallbackAdvogadoMinutes
}

// warningMinutes resolves the warning schedule for a role, falling back to
// the hard-coded defaults when the configuration carries none.
func warningMinutes(timing entity.SessionConfig, role entity.Role) []int {
	if marks := timing.WarningsFor(role); len(marks) > 0 {
		return marks
	}
	if role == entity.RoleEstagiario {
		return fallbackWarningsEst
	}

	return fallbackWarningsAdv
}

// buildWarningSchedule converts the configured warning marks from minutes
// to seconds, drops marks outside the session span, dedupes and sorts
// descending so the countdown crosses them in order.
func buildWarningSchedule(warningMinutes []int, totalSeconds int) []int {
	seen := make(map[int]bool, len(warningMinutes))
	schedule := make([]int, 0, len(warningMinutes))
	for _, minutes := range warningMinutes {
		seconds := minutes * 60
		if seconds <= 0 || seconds >= totalSeconds || seen[seconds] {
			continue
		}
		seen[seconds] = true
		schedule = append(schedule, seconds)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(schedule)))

	return schedule
}

// run drives the countdown until the session is released.
func (srv *sessionService) run(stop chan struct{}) {
	ticker := time.NewTicker(srv.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			srv.tick()
		}
	}
}

// tick advances the countdown by one second. It fires at most one warning
// per tick, the largest unfired mark the remaining time has crossed, and
// releases the session when the countdown reaches zero.
func (srv *sessionService) tick() {
	srv.mu.Lock()
	session := srv.active
	if session == nil {
		srv.mu.Unlock()

		return
	}

	if session.snapshot.RemainingSeconds > 0 {
		session.snapshot.RemainingSeconds--
	}
	remaining := session.snapshot.RemainingSeconds

	if remaining <= 0 {
		event := srv.releaseLocked(entity.ReleaseTimeout)
		srv.mu.Unlock()

		srv.presenter.ShowLoginView()
		srv.emit(event)

		return
	}

	var warning *entity.SessionEvent
	for _, mark := range session.snapshot.WarningSchedule {
		if session.fired[mark] || remaining > mark {
			continue
		}
		session.fired[mark] = true
		warning = &entity.SessionEvent{
			Kind:           entity.EventWarning,
			WarningSeconds: mark,
			Snapshot:       session.snapshot,
		}

		break
	}
	srv.mu.Unlock()

	if warning != nil {
		srv.logger.Info("Session warning", slog.Int("remainingSeconds", warning.WarningSeconds))
		srv.emit(*warning)
	}
}

// Release tears the active session down. Returns false when no session was
// active; a second release of the same session is a no-op.
func (srv *sessionService) Release(reason entity.ReleaseReason) bool {
	srv.mu.Lock()
	if srv.active == nil {
		srv.mu.Unlock()

		return false
	}
	event := srv.releaseLocked(reason)
	srv.mu.Unlock()

	srv.presenter.ShowLoginView()
	srv.emit(event)

	return true
}

// releaseLocked is the single teardown path. Caller holds the mutex.
func (srv *sessionService) releaseLocked(reason entity.ReleaseReason) entity.SessionEvent {
	session := srv.active
	srv.active = nil
	close(session.stop)

	snapshot := session.snapshot
	endedAt := time.Now().UTC()

	if err := srv.trail.Record(entity.SessionRecord{
		ID:              snapshot.ID.String(),
		UserName:        snapshot.User.Name,
		Role:            snapshot.User.Role,
		StartedAt:       snapshot.StartedAt,
		EndedAt:         endedAt,
		Reason:          reason,
		DurationSeconds: snapshot.TotalSeconds - snapshot.RemainingSeconds,
	}); err != nil {
		srv.logger.Error("Audit record failed", slog.Any("error", err))
	}

	srv.logger.Info("Session released",
		slog.String("id", snapshot.ID.String()),
		slog.String("reason", string(reason)),
		slog.Int("remainingSeconds", snapshot.RemainingSeconds),
	)

	return entity.SessionEvent{Kind: entity.EventReleased, Reason: reason, Snapshot: snapshot}
}

// Snapshot returns a copy of the active session, if any.
func (srv *sessionService) Snapshot() (*entity.SessionSnapshot, bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.active == nil {
		return nil, false
	}

	snapshot := srv.active.snapshot
	snapshot.WarningSchedule = append([]int(nil), snapshot.WarningSchedule...)

	return &snapshot, true
}

// Subscribe registers a session event listener and returns its removal handle.
func (srv *sessionService) Subscribe(fn func(entity.SessionEvent)) repository.Unsubscribe {
	srv.mu.Lock()
	id := srv.nextSubID
	srv.nextSubID++
	srv.subscribers[id] = fn
	srv.mu.Unlock()

	return func() {
		srv.mu.Lock()
		delete(srv.subscribers, id)
		srv.mu.Unlock()
	}
}

// emit fans an event out to subscribers outside the lock.
func (srv *sessionService) emit(event entity.SessionEvent) {
	srv.mu.Lock()
	listeners := make([]func(entity.SessionEvent), 0, len(srv.subscribers))
	for _, fn := range srv.subscribers {
		listeners = append(listeners, fn)
	}
	srv.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
