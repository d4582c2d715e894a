package usecase

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

type fakeRegistrationRepo struct {
	rows        map[string]registration.Registration
	getErr      error
	completeErr error
}

func newFakeRegistrationRepo(regs ...registration.Registration) *fakeRegistrationRepo {
	rows := make(map[string]registration.Registration, len(regs))
	for _, reg := range regs {
		rows[reg.ID] = reg
	}
	return &fakeRegistrationRepo{rows: rows}
}

func (f *fakeRegistrationRepo) GetByID(_ context.Context, id string) (registration.Registration, error) {
	if f.getErr != nil {
		return registration.Registration{}, f.getErr
	}
	reg, ok := f.rows[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func (f *fakeRegistrationRepo) ListByStatus(_ context.Context, status registration.RegistrationStatus, offset, limit int) ([]registration.Registration, int64, error) {
	var matched []registration.Registration
	for _, reg := range f.rows {
		if reg.Status == status {
			matched = append(matched, reg)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeRegistrationRepo) CompleteReview(_ context.Context, id string, decision ReviewDecision) (registration.Registration, bool, error) {
	if f.completeErr != nil {
		return registration.Registration{}, false, f.completeErr
	}
	reg, ok := f.rows[id]
	if !ok || reg.Status != registration.StatusPendingReview {
		return registration.Registration{}, false, nil
	}
	reviewedAt := decision.ReviewedAt
	reg.Status = decision.Status
	reg.ReviewedAt = &reviewedAt
	reg.ReviewedBy = &decision.ReviewedBy
	if decision.Notes != "" {
		notes := decision.Notes
		reg.ReviewNotes = &notes
	}
	f.rows[id] = reg
	return reg, true, nil
}

func (f *fakeRegistrationRepo) Count(context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeRegistrationRepo) CountByStatus(_ context.Context, status registration.RegistrationStatus) (int64, error) {
	var total int64
	for _, reg := range f.rows {
		if reg.Status == status {
			total++
		}
	}
	return total, nil
}

func (f *fakeRegistrationRepo) AverageReviewHours(context.Context) (*float64, error) {
	var sum float64
	var n int
	for _, reg := range f.rows {
		if !reg.Status.Terminal() || reg.SubmittedAt == nil || reg.ReviewedAt == nil {
			continue
		}
		sum += reg.ReviewedAt.Sub(*reg.SubmittedAt).Hours()
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

type fakeVerificationRepo struct {
	results   []registration.VerificationResult
	insertErr error
}

func (f *fakeVerificationRepo) Insert(_ context.Context, result registration.VerificationResult) (registration.VerificationResult, error) {
	if f.insertErr != nil {
		return registration.VerificationResult{}, f.insertErr
	}
	result.ID = "ver-" + strconv.Itoa(len(f.results)+1)
	f.results = append(f.results, result)
	return result, nil
}

func (f *fakeVerificationRepo) ListByRegistration(_ context.Context, registrationID string) ([]registration.VerificationResult, error) {
	var out []registration.VerificationResult
	for _, res := range f.results {
		if res.RegistrationID == registrationID {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	return out, nil
}

type fakeAuditRepo struct {
	entries   []registration.AuditLog
	appendErr error
}

func (f *fakeAuditRepo) Append(_ context.Context, entry registration.AuditLog) (registration.AuditLog, error) {
	if f.appendErr != nil {
		return registration.AuditLog{}, f.appendErr
	}
	entry.ID = "audit-" + strconv.Itoa(len(f.entries)+1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAuditRepo) ListByRegistration(_ context.Context, registrationID string) ([]registration.AuditLog, error) {
	var out []registration.AuditLog
	for _, entry := range f.entries {
		if entry.RegistrationID == registrationID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) Recent(_ context.Context, limit int) ([]registration.AuditLog, error) {
	out := append([]registration.AuditLog(nil), f.entries...)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuditRepo) actions() []registration.AuditAction {
	out := make([]registration.AuditAction, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

type sentMail struct {
	kind string
	to   string
	body string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (f *fakeNotifier) SendApproval(_ context.Context, to, _, notes string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: "approval", to: to, body: notes})
	return nil
}

func (f *fakeNotifier) SendRejection(_ context.Context, to, _, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: "rejection", to: to, body: reason})
	return nil
}

func (f *fakeNotifier) SendPasswordReset(_ context.Context, to, resetURL string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: "reset", to: to, body: resetURL})
	return nil
}

type fakeAssessor struct {
	assessment registration.RiskAssessment
	err        error
	calls      int
}

func (f *fakeAssessor) Assess(context.Context, registration.Registration) (registration.RiskAssessment, error) {
	f.calls++
	if f.err != nil {
		return registration.RiskAssessment{}, f.err
	}
	return f.assessment, nil
}

type fakeTracker struct {
	counts map[string]int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{counts: make(map[string]int)}
}

func (f *fakeTracker) RecordFailure(ip string) int {
	f.counts[ip]++
	return f.counts[ip]
}

func (f *fakeTracker) Count(ip string) int { return f.counts[ip] }

func (f *fakeTracker) Clear(ip string) { delete(f.counts, ip) }

type fakeUserRepo struct {
	rows map[string]registration.User
}

func newFakeUserRepo(users ...registration.User) *fakeUserRepo {
	rows := make(map[string]registration.User, len(users))
	for _, user := range users {
		rows[user.ID] = user
	}
	return &fakeUserRepo{rows: rows}
}

func (f *fakeUserRepo) Create(_ context.Context, user registration.User) (registration.User, error) {
	if user.ID == "" {
		user.ID = "user-" + strconv.Itoa(len(f.rows)+1)
	}
	f.rows[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (registration.User, error) {
	user, ok := f.rows[id]
	if !ok {
		return registration.User{}, registration.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (registration.User, error) {
	for _, user := range f.rows {
		if user.Email == email {
			return user, nil
		}
	}
	return registration.User{}, registration.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := f.rows[id]
	if !ok {
		return registration.ErrNotFound
	}
	user.PasswordHash = passwordHash
	f.rows[id] = user
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	user, ok := f.rows[id]
	if !ok {
		return registration.ErrNotFound
	}
	user.LastLoginAt = &at
	f.rows[id] = user
	return nil
}

type fakeResetTokenRepo struct {
	rows      map[string]registration.ResetToken
	insertErr error
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{rows: make(map[string]registration.ResetToken)}
}

func (f *fakeResetTokenRepo) Insert(_ context.Context, token registration.ResetToken) (registration.ResetToken, error) {
	if f.insertErr != nil {
		return registration.ResetToken{}, f.insertErr
	}
	if token.ID == "" {
		token.ID = "token-" + strconv.Itoa(len(f.rows)+1)
	}
	f.rows[token.ID] = token
	return token, nil
}

func (f *fakeResetTokenRepo) GetByToken(_ context.Context, token string) (registration.ResetToken, error) {
	for _, rt := range f.rows {
		if rt.Token == token {
			return rt, nil
		}
	}
	return registration.ResetToken{}, registration.ErrNotFound
}

func (f *fakeResetTokenRepo) MarkUsed(_ context.Context, id string, at time.Time) error {
	rt, ok := f.rows[id]
	if !ok {
		return registration.ErrNotFound
	}
	rt.Used = true
	rt.UsedAt = &at
	f.rows[id] = rt
	return nil
}

func (f *fakeResetTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for id, rt := range f.rows {
		if !rt.Used && rt.ExpiresAt.Before(now) {
			delete(f.rows, id)
			removed++
		}
	}
	return removed, nil
}

type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(user registration.User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "session-" + user.ID, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
