package layout

import (
	"context"
	"sync"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/audit"
	"go-hse/internal/kvstore"
	"go-hse/internal/metrics"

	"go.uber.org/zap"
)

// DefaultDashboard is the overview dashboard that also carries custom report widgets.
const DefaultDashboard = "overview"

// SessionRef identifies one user's view of one dashboard.
type SessionRef struct {
	CompanyID string
	UserID    string
	Dashboard string
}

func (r SessionRef) key() string {
	return LayoutKey(r.CompanyID, r.UserID, r.Dashboard)
}

// CustomWidgetSource lists the custom report widgets a user currently owns.
type CustomWidgetSource interface {
	ListCustomWidgets(ctx context.Context, companyID, userID string) ([]CustomWidget, error)
}

type LayoutService interface {
	Session(ctx context.Context, ref SessionRef) *Engine
	// Attach returns the session engine and keeps it registered until release is called.
	Attach(ctx context.Context, ref SessionRef) (engine *Engine, release func())
	ResetLayout(ctx context.Context, ref SessionRef) *Engine
	// ReportsChanged reconciles every live session of the user after a report was
	// created, duplicated or deleted.
	ReportsChanged(ctx context.Context, companyID, userID string)
	EvictIdle(maxIdle time.Duration) int
	SessionCount() int
}

type LayoutServiceImpl struct {
	kv           kvstore.Store
	widgets      CustomWidgetSource
	auditService audit.AuditService
	metrics      *metrics.Metrics
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ref    SessionRef
	engine *Engine
	// open sockets driving engine
	attached int
}

func NewLayoutService(kv kvstore.Store, widgets CustomWidgetSource, auditService audit.AuditService, m *metrics.Metrics, logger *zap.Logger) LayoutService {
	return &LayoutServiceImpl{
		kv:           kv,
		widgets:      widgets,
		auditService: auditService,
		metrics:      m,
		logger:       logger,
		sessions:     make(map[string]*session),
	}
}

// Session returns the live engine for ref, loading it from storage on first use.
func (s *LayoutServiceImpl) Session(ctx context.Context, ref SessionRef) *Engine {
	return s.session(ctx, ref, false).engine
}

func (s *LayoutServiceImpl) Attach(ctx context.Context, ref SessionRef) (*Engine, func()) {
	sess := s.session(ctx, ref, true)
	var once sync.Once
	return sess.engine, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sess.attached--
		})
	}
}

// session finds or loads the session for ref. attach is applied under the registry lock
// so eviction cannot drop the session in between.
func (s *LayoutServiceImpl) session(ctx context.Context, ref SessionRef, attach bool) *session {
	if ref.Dashboard == "" {
		ref.Dashboard = DefaultDashboard
	}
	key := ref.key()

	s.mu.Lock()
	if sess, ok := s.sessions[key]; ok {
		if attach {
			sess.attached++
		}
		s.mu.Unlock()
		return sess
	}
	s.mu.Unlock()

	engine := NewEngine(ctx, NewLayoutStore(s.kv, key), s.customWidgets(ctx, ref), s.metrics, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have loaded it meanwhile
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{ref: ref, engine: engine}
		s.sessions[key] = sess
		s.metrics.SetLayoutSessions(len(s.sessions))
	}
	if attach {
		sess.attached++
	}
	return sess
}

// ResetLayout restores the default layout and clears hidden widgets.
func (s *LayoutServiceImpl) ResetLayout(ctx context.Context, ref SessionRef) *Engine {
	engine := s.Session(ctx, ref)
	engine.Reset(ctx)

	if s.auditService != nil {
		_ = s.auditService.LogChange(ctx, common_models.AuditActionLayoutReset, "layouts", ref.key(), nil)
	}
	return engine
}

// customWidgets is empty for dashboards other than the overview. A failed lookup is
// logged and yields no custom widgets.
func (s *LayoutServiceImpl) customWidgets(ctx context.Context, ref SessionRef) []CustomWidget {
	if ref.Dashboard != DefaultDashboard || s.widgets == nil {
		return nil
	}
	widgets, err := s.widgets.ListCustomWidgets(ctx, ref.CompanyID, ref.UserID)
	if err != nil {
		s.logger.Warn("Failed to list custom report widgets",
			zap.String("company_id", ref.CompanyID),
			zap.String("user_id", ref.UserID),
			zap.Error(err))
		return nil
	}
	return widgets
}

func (s *LayoutServiceImpl) ReportsChanged(ctx context.Context, companyID, userID string) {
	s.mu.Lock()
	var affected []*session
	for _, sess := range s.sessions {
		if sess.ref.CompanyID == companyID && sess.ref.UserID == userID && sess.ref.Dashboard == DefaultDashboard {
			affected = append(affected, sess)
		}
	}
	s.mu.Unlock()

	// Sessions not in memory are reconciled when they are next loaded.
	if len(affected) == 0 {
		return
	}
	widgets, err := s.widgets.ListCustomWidgets(ctx, companyID, userID)
	if err != nil {
		s.logger.Warn("Skipping layout reconciliation", zap.String("company_id", companyID), zap.Error(err))
		return
	}
	for _, sess := range affected {
		sess.engine.SetCustomWidgets(ctx, widgets)
	}
}

// EvictIdle drops sessions unused for longer than maxIdle. Sessions in the middle of a
// gesture or driven by an open socket are kept.
func (s *LayoutServiceImpl) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for key, sess := range s.sessions {
		if sess.attached > 0 {
			continue
		}
		since := sess.engine.IdleSince()
		if since.IsZero() || now.Sub(since) <= maxIdle {
			continue
		}
		delete(s.sessions, key)
		evicted++
	}
	s.metrics.SetLayoutSessions(len(s.sessions))
	return evicted
}

func (s *LayoutServiceImpl) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
