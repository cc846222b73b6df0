package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/internal/data/repository"
	"events-platform/pkg/metrics"
	"events-platform/pkg/queue"
	"events-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore backs every fake repository. txMu plays the role of the event row
// lock: WithinTx holds it for the whole callback.
type memStore struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	users       map[uuid.UUID]*entity.User
	otps        []*entity.EmailOTP
	events      map[uuid.UUID]*entity.Event
	enrollments map[uuid.UUID]*entity.Enrollment
}

func newMemRepo() (*repository.Repository, *memStore) {
	s := &memStore{
		users:       map[uuid.UUID]*entity.User{},
		events:      map[uuid.UUID]*entity.Event{},
		enrollments: map[uuid.UUID]*entity.Enrollment{},
	}
	repo := &repository.Repository{
		User:       &memUserRepo{s},
		OTP:        &memOTPRepo{s},
		Event:      &memEventRepo{s},
		Enrollment: &memEnrollmentRepo{s},
	}
	repo.Tx = &memTx{store: s, repo: repo}
	return repo, s
}

type memTx struct {
	store *memStore
	repo  *repository.Repository
}

func (t *memTx) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	inner := *t.repo
	inner.Tx = nil
	return fn(&inner)
}

// ---- users ----

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.EmailVerified {
		return false, nil
	}
	u.EmailVerified = true
	u.UpdatedAt = at
	return true, nil
}

// ---- otps ----

type memOTPRepo struct{ s *memStore }

func (r *memOTPRepo) Create(_ context.Context, otp *entity.EmailOTP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *otp
	r.s.otps = append(r.s.otps, &cp)
	return nil
}

func (r *memOTPRepo) latest(email string, unusedOnly bool) *entity.EmailOTP {
	var found *entity.EmailOTP
	for _, o := range r.s.otps {
		if !strings.EqualFold(o.Email, email) || (unusedOnly && o.IsUsed) {
			continue
		}
		if found == nil || !o.CreatedAt.Before(found.CreatedAt) {
			found = o
		}
	}
	if found == nil {
		return nil
	}
	cp := *found
	return &cp
}

func (r *memOTPRepo) FindLatestUnused(_ context.Context, email string) (*entity.EmailOTP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.latest(email, true), nil
}

func (r *memOTPRepo) FindLatest(_ context.Context, email string) (*entity.EmailOTP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.latest(email, false), nil
}

func (r *memOTPRepo) IncrementAttempts(_ context.Context, id uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.otps {
		if o.ID == id {
			o.Attempts++
			return o.Attempts, nil
		}
	}
	return 0, fmt.Errorf("otp %s not found", id)
}

func (r *memOTPRepo) MarkAsUsed(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.otps {
		if o.ID == id && !o.IsUsed {
			o.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

// ---- events ----

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) enrolledCount(id uuid.UUID) int {
	n := 0
	for _, en := range r.s.enrollments {
		if en.EventID == id && en.IsEnrolled() {
			n++
		}
	}
	return n
}

func (r *memEventRepo) summary(e *entity.Event) entity.EventSummary {
	sum := entity.EventSummary{Event: *e, EnrolledCount: r.enrolledCount(e.ID)}
	if u, ok := r.s.users[e.CreatedBy]; ok {
		sum.CreatorEmail = u.Email
	}
	return sum
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.EventSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	sum := r.summary(e)
	return &sum, nil
}

func (r *memEventRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *memEventRepo) matching(f repository.EventFilter) []entity.EventSummary {
	var out []entity.EventSummary
	for _, e := range r.s.events {
		if f.CreatedBy != nil && e.CreatedBy != *f.CreatedBy {
			continue
		}
		if f.Location != "" && !containsFold(e.Location, f.Location) {
			continue
		}
		if f.Language != "" && !containsFold(e.Language, f.Language) {
			continue
		}
		if f.Query != "" && !containsFold(e.Title, f.Query) && !containsFold(e.Description, f.Query) {
			continue
		}
		if f.StartsAfter != nil && e.StartsAt.Before(*f.StartsAfter) {
			continue
		}
		if f.StartsBefore != nil && e.StartsAt.After(*f.StartsBefore) {
			continue
		}
		out = append(out, r.summary(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (r *memEventRepo) FindAll(_ context.Context, f repository.EventFilter, limit, offset int) ([]entity.EventSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.matching(f)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memEventRepo) CountAll(_ context.Context, f repository.EventFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.matching(f)), nil
}

func (r *memEventRepo) CountEnrolled(_ context.Context, id uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.enrolledCount(id), nil
}

func (r *memEventRepo) Update(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[event.ID]; !ok {
		return fmt.Errorf("event %s not found", event.ID)
	}
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return fmt.Errorf("event %s not found", id)
	}
	delete(r.s.events, id)
	for enID, en := range r.s.enrollments {
		if en.EventID == id {
			delete(r.s.enrollments, enID)
		}
	}
	return nil
}

// ---- enrollments ----

type memEnrollmentRepo struct{ s *memStore }

func (r *memEnrollmentRepo) detail(en *entity.Enrollment) entity.EnrollmentDetail {
	d := entity.EnrollmentDetail{Enrollment: *en}
	if e, ok := r.s.events[en.EventID]; ok {
		d.EventTitle = e.Title
		d.EventStartsAt = e.StartsAt
		d.EventEndsAt = e.EndsAt
		d.EventLocation = e.Location
		d.EventLanguage = e.Language
	}
	if u, ok := r.s.users[en.SeekerID]; ok {
		d.SeekerEmail = u.Email
	}
	return d
}

func (r *memEnrollmentRepo) Create(_ context.Context, en *entity.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.enrollments {
		if existing.EventID == en.EventID && existing.SeekerID == en.SeekerID {
			return fmt.Errorf("create enrollment: %w", repository.ErrDuplicate)
		}
	}
	cp := *en
	r.s.enrollments[en.ID] = &cp
	return nil
}

func (r *memEnrollmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.EnrollmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	en, ok := r.s.enrollments[id]
	if !ok {
		return nil, nil
	}
	d := r.detail(en)
	return &d, nil
}

func (r *memEnrollmentRepo) FindByEventAndSeeker(_ context.Context, eventID, seekerID uuid.UUID) (*entity.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, en := range r.s.enrollments {
		if en.EventID == eventID && en.SeekerID == seekerID {
			cp := *en
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEnrollmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.EnrollmentStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	en, ok := r.s.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment %s not found", id)
	}
	en.Status = status
	en.UpdatedAt = at
	return nil
}

func (r *memEnrollmentRepo) collect(keep func(d entity.EnrollmentDetail) bool, less func(a, b entity.EnrollmentDetail) bool) []entity.EnrollmentDetail {
	var out []entity.EnrollmentDetail
	for _, en := range r.s.enrollments {
		d := r.detail(en)
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *memEnrollmentRepo) ListBySeeker(_ context.Context, seekerID uuid.UUID, scope repository.EnrollmentScope, now time.Time) ([]entity.EnrollmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byStart := func(a, b entity.EnrollmentDetail) bool { return a.EventStartsAt.Before(b.EventStartsAt) }
	switch scope {
	case repository.ScopePast:
		return r.collect(func(d entity.EnrollmentDetail) bool {
			return d.SeekerID == seekerID && d.IsEnrolled() && d.EventEndsAt.Before(now)
		}, byStart), nil
	case repository.ScopeUpcoming:
		return r.collect(func(d entity.EnrollmentDetail) bool {
			return d.SeekerID == seekerID && d.IsEnrolled() && !d.EventEndsAt.Before(now)
		}, byStart), nil
	default:
		return r.collect(func(d entity.EnrollmentDetail) bool {
			return d.SeekerID == seekerID
		}, func(a, b entity.EnrollmentDetail) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
	}
}

func (r *memEnrollmentRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]entity.EnrollmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(d entity.EnrollmentDetail) bool {
		return d.EventID == eventID && d.IsEnrolled()
	}, func(a, b entity.EnrollmentDetail) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r *memEnrollmentRepo) FindStartingBetween(_ context.Context, from, to time.Time) ([]entity.EnrollmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(d entity.EnrollmentDetail) bool {
		return d.IsEnrolled() && !d.EventStartsAt.Before(from) && d.EventStartsAt.Before(to)
	}, func(a, b entity.EnrollmentDetail) bool { return a.EventStartsAt.Before(b.EventStartsAt) }), nil
}

// ---- notification doubles ----

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type scheduledTask struct {
	Delay   time.Duration
	Name    string
	Payload any
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
	err   error
}

func (f *fakeScheduler) ScheduleAfter(_ context.Context, delay time.Duration, name string, payload any) (*queue.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, scheduledTask{Delay: delay, Name: name, Payload: payload})
	return &queue.Task{ID: uuid.NewString(), Name: name, DueAt: time.Now().Add(delay)}, nil
}

func (f *fakeScheduler) Tasks() []scheduledTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scheduledTask(nil), f.tasks...)
}

// ---- fixture ----

type fixture struct {
	repo      *repository.Repository
	store     *memStore
	mailer    *fakeMailer
	scheduler *fakeScheduler
	metrics   *metrics.Metrics
	now       time.Time
}

func newFixture() *fixture {
	repo, store := newMemRepo()
	return &fixture{
		repo:      repo,
		store:     store,
		mailer:    &fakeMailer{},
		scheduler: &fakeScheduler{},
		metrics:   metrics.New(),
		now:       time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) notificationConfig() utils.NotificationConfig {
	return utils.NotificationConfig{
		FollowupDelay:    time.Hour,
		ReminderLead:     time.Hour,
		ReminderInterval: 5 * time.Minute,
		QueuePoll:        time.Second,
	}
}

func (f *fixture) notifications() *notificationService {
	return NewNotificationService(f.repo, f.mailer, f.scheduler, f.notificationConfig(), f.metrics, zap.NewNop()).(*notificationService)
}

func (f *fixture) otpService() *otpService {
	svc := NewOTPService(f.repo, f.notifications(), utils.OTPConfig{
		Expiry:      5 * time.Minute,
		MaxAttempts: 3,
		Length:      6,
	}, f.metrics, zap.NewNop()).(*otpService)
	svc.now = f.clock
	return svc
}

func (f *fixture) eventService() *eventService {
	svc := NewEventService(f.repo, zap.NewNop()).(*eventService)
	svc.now = f.clock
	return svc
}

func (f *fixture) enrollmentService() *enrollmentService {
	svc := NewEnrollmentService(f.repo, f.notifications(), f.metrics, zap.NewNop()).(*enrollmentService)
	svc.now = f.clock
	return svc
}

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash hashes "password123" once per test binary.
func testPasswordHash() string {
	testHashOnce.Do(func() {
		testHash, _ = utils.HashPassword("password123")
	})
	return testHash
}

func (f *fixture) addUser(email string, role entity.UserRole, verified bool) utils.Principal {
	hash := testPasswordHash()
	u := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: f.now, UpdatedAt: f.now},
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: verified,
		IsActive:      true,
	}
	f.store.users[u.ID] = u
	return utils.Principal{UserID: u.ID, Email: email, Role: role, EmailVerified: verified}
}

func (f *fixture) addEvent(owner utils.Principal, startsIn time.Duration, capacity *int) *entity.Event {
	e := &entity.Event{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: f.now, UpdatedAt: f.now},
		Title:        "Go meetup",
		Description:  "Talks about concurrency",
		Language:     "English",
		Location:     "Berlin",
		StartsAt:     f.now.Add(startsIn),
		EndsAt:       f.now.Add(startsIn + 2*time.Hour),
		Capacity:     capacity,
		CreatedBy:    owner.UserID,
	}
	f.store.events[e.ID] = e
	return e
}

func intPtr(v int) *int { return &v }
