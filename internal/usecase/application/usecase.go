package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/apperr"
	"loantrack/internal/domain/decision"
	"loantrack/internal/domain/identity"
	"loantrack/internal/domain/uow"
	"loantrack/internal/infrastructure/metrics"
	"loantrack/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxPurposeLen = 500

// Directory resolves display identities for user ids.
type Directory interface {
	Lookup(ctx context.Context, userIDs []string) (map[string]identity.Profile, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt decision.Event) error
}

// Manager owns the application lifecycle: submission, the two review
// gates, and role-scoped reads.
type Manager struct {
	apps      application.Repository
	decisions decision.Repository
	uow       uow.UnitOfWork
	dir       Directory
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewManager(
	apps application.Repository,
	decisions decision.Repository,
	tx uow.UnitOfWork,
	dir Directory,
	events EventPublisher,
	log *zap.Logger,
) *Manager {
	return &Manager{
		apps:      apps,
		decisions: decisions,
		uow:       tx,
		dir:       dir,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

func (m *Manager) Submit(ctx context.Context, subject identity.Subject, in SubmitInput) (*ApplicationDTO, error) {
	if subject.Role != identity.RoleUser {
		return nil, apperr.Authorization("only applicants can submit loan applications")
	}
	purpose := strings.TrimSpace(in.Purpose)
	if err := validateSubmit(in.Amount, in.TermMonths, purpose); err != nil {
		return nil, err
	}

	a := &application.LoanApplication{
		ApplicationID: id.NewID32(),
		OwnerID:       subject.ID,
		Amount:        in.Amount,
		TermMonths:    in.TermMonths,
		Purpose:       purpose,
		Status:        application.StatusPending,
	}
	if err := m.apps.Create(ctx, a); err != nil {
		m.log.Error("create application failed", zap.String("owner_id", subject.ID), zap.Error(err))
		return nil, apperr.Store("create application", err)
	}
	metrics.ApplicationsSubmitted.Inc()
	m.log.Info("application submitted",
		zap.String("application_id", a.ApplicationID),
		zap.String("owner_id", a.OwnerID),
		zap.String("amount", a.Amount.String()),
	)
	dto := toDTO(a)
	return &dto, nil
}

func validateSubmit(amount decimal.Decimal, term int, purpose string) error {
	switch {
	case !amount.IsPositive():
		return apperr.Validation("amount", "must be greater than 0")
	case amount.GreaterThanOrEqual(application.MaxAmount):
		return apperr.Validation("amount", "must be less than "+application.MaxAmount.String())
	case !amount.Equal(amount.Round(2)):
		return apperr.Validation("amount", "must have at most 2 decimal places")
	case term <= 0:
		return apperr.Validation("term_months", "must be greater than 0")
	case purpose == "":
		return apperr.Validation("purpose", "is required")
	case utf8.RuneCountInString(purpose) > maxPurposeLen:
		return apperr.Validation("purpose", "must be at most 500 characters")
	}
	return nil
}

// Decide applies one review decision. The stored status is re-checked by a
// conditional update, so of two racing decisions on a stage one gets a conflict.
func (m *Manager) Decide(ctx context.Context, applicationID string, subject identity.Subject, in DecideInput) (out *ApplicationDTO, err error) {
	action := application.ParseAction(in.Action)
	defer func() { metrics.ObserveDecision(actionLabel(action), err) }()

	var (
		rec *application.LoanApplication
		dec *decision.Decision
	)
	err = m.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *application.LoanApplication) error {
		rule, reason, err := checkDecision(a, subject, action, in.RejectionReason)
		if err != nil {
			return err
		}

		upd := application.Update{
			From:   a.Status,
			To:     rule.To,
			Actor:  subject.ID,
			At:     m.now().UTC(),
			Reason: reason,
		}
		switch err := r.Applications.ApplyUpdate(ctx, a.ApplicationID, upd); {
		case errors.Is(err, application.ErrStatusMismatch):
			return apperr.Conflict("application was decided concurrently")
		case err != nil:
			return apperr.Store("update application", err)
		}

		d := &decision.Decision{
			DecisionID:    id.NewID32(),
			ApplicationID: a.ID,
			FromStatus:    upd.From,
			ToStatus:      upd.To,
			Action:        action,
			ActorID:       subject.ID,
			ActorRole:     subject.Role,
			Reason:        reason,
			DecidedAt:     upd.At,
		}
		if err := r.Decisions.Create(ctx, d); err != nil {
			return apperr.Store("record decision", err)
		}

		upd.Apply(a)
		rec, dec = a, d
		return nil
	})
	switch {
	case errors.Is(err, application.ErrNotFound):
		return nil, apperr.NotFound("application not found")
	case err != nil && apperr.KindOf(err) == "":
		m.log.Error("decide failed", zap.String("application_id", applicationID), zap.Error(err))
		return nil, apperr.Store("decide", err)
	case err != nil:
		return nil, err
	}

	m.log.Info("application decided",
		zap.String("application_id", rec.ApplicationID),
		zap.String("action", string(action)),
		zap.String("from", string(dec.FromStatus)),
		zap.String("to", string(dec.ToStatus)),
		zap.String("actor_id", subject.ID),
	)
	m.publish(ctx, toEvent(rec, dec))

	dto := toDTO(rec)
	return &dto, nil
}

// checkDecision runs the ordered authorization and validation checks and
// returns the matching rule and the normalized reason.
func checkDecision(a *application.LoanApplication, subject identity.Subject, action application.Action, rawReason *string) (application.Rule, *string, error) {
	stage, ok := application.StageFor(subject.Role)
	if !ok || a.Status.Rank() < stage.Rank() {
		return application.Rule{}, nil, apperr.Authorization(
			"role " + string(subject.Role) + " cannot decide an application in status " + string(a.Status))
	}

	rule, ok := application.Lookup(stage, action)
	if !ok {
		return application.Rule{}, nil, apperr.Validation("action", "must be one of "+joinActions(application.ActionsAt(stage)))
	}

	var reason *string
	if rawReason != nil {
		if r := strings.TrimSpace(*rawReason); r != "" {
			reason = &r
		}
	}
	if action == application.ActionReject && reason == nil {
		return application.Rule{}, nil, apperr.Validation("rejection_reason", "is required when rejecting")
	}
	if action != application.ActionReject && reason != nil {
		return application.Rule{}, nil, apperr.Validation("rejection_reason", "must be empty unless rejecting")
	}

	if a.Status.Terminal() {
		return application.Rule{}, nil, apperr.Conflict("application is final: " + string(a.Status))
	}
	if a.Status != stage {
		return application.Rule{}, nil, apperr.Conflict("application is already " + string(a.Status))
	}
	return rule, reason, nil
}

// publish never fails the caller; the decision is already committed.
func (m *Manager) publish(ctx context.Context, evt decision.Event) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, evt); err != nil {
		metrics.NotificationsFailed.Inc()
		m.log.Warn("publish decision event failed",
			zap.String("decision_id", evt.DecisionID),
			zap.String("application_id", evt.ApplicationID),
			zap.Error(err),
		)
	}
}

func (m *Manager) ListVisible(ctx context.Context, requester identity.Subject) ([]ApplicationView, error) {
	apps, err := m.visible(ctx, requester)
	if err != nil {
		return nil, err
	}
	return m.enrich(ctx, requester, apps)
}

// Get returns one record. Records outside the requester's visible set are
// reported as not found.
func (m *Manager) Get(ctx context.Context, requester identity.Subject, applicationID string) (*ApplicationView, error) {
	a, err := m.load(ctx, requester, applicationID)
	if err != nil {
		return nil, err
	}
	views, err := m.enrich(ctx, requester, []application.LoanApplication{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// History lists the decisions taken on a visible record, oldest first.
func (m *Manager) History(ctx context.Context, requester identity.Subject, applicationID string) ([]DecisionDTO, error) {
	a, err := m.load(ctx, requester, applicationID)
	if err != nil {
		return nil, err
	}
	rows, err := m.decisions.ListByApplication(ctx, a.ID)
	if err != nil {
		return nil, apperr.Store("list decisions", err)
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ActorID)
	}
	profiles, err := m.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]DecisionDTO, 0, len(rows))
	for i := range rows {
		d := rows[i]
		out = append(out, DecisionDTO{
			DecisionID: d.DecisionID,
			Action:     d.Action,
			FromStatus: d.FromStatus,
			ToStatus:   d.ToStatus,
			Actor:      *party(profiles, d.ActorID, requester.Role.Staff()),
			ActorRole:  d.ActorRole,
			Reason:     d.Reason,
			DecidedAt:  d.DecidedAt,
		})
	}
	return out, nil
}

func (m *Manager) Stats(ctx context.Context, requester identity.Subject) (*StatsDTO, error) {
	apps, err := m.visible(ctx, requester)
	if err != nil {
		return nil, err
	}
	s := &StatsDTO{Total: len(apps), ApprovedAmount: decimal.Zero}
	for i := range apps {
		switch apps[i].Status {
		case application.StatusPending:
			s.Pending++
		case application.StatusVerified:
			s.Verified++
		case application.StatusApproved:
			s.Approved++
			s.ApprovedAmount = s.ApprovedAmount.Add(apps[i].Amount)
		case application.StatusRejected:
			s.Rejected++
		}
	}
	return s, nil
}

func (m *Manager) visible(ctx context.Context, requester identity.Subject) ([]application.LoanApplication, error) {
	var (
		apps []application.LoanApplication
		err  error
	)
	switch {
	case requester.Role.Staff():
		apps, err = m.apps.ListAll(ctx)
	case requester.Role == identity.RoleUser:
		apps, err = m.apps.ListByOwner(ctx, requester.ID)
	default:
		return nil, apperr.Authorization("unknown role")
	}
	if err != nil {
		return nil, apperr.Store("list applications", err)
	}
	return apps, nil
}

func (m *Manager) load(ctx context.Context, requester identity.Subject, applicationID string) (*application.LoanApplication, error) {
	if !requester.Role.Staff() && requester.Role != identity.RoleUser {
		return nil, apperr.Authorization("unknown role")
	}
	a, err := m.apps.GetByApplicationID(ctx, applicationID)
	switch {
	case errors.Is(err, application.ErrNotFound):
		return nil, apperr.NotFound("application not found")
	case err != nil:
		return nil, apperr.Store("load application", err)
	}
	if !requester.Role.Staff() && a.OwnerID != requester.ID {
		return nil, apperr.NotFound("application not found")
	}
	return a, nil
}

// enrich attaches display identities. Owners are only resolved for staff.
func (m *Manager) enrich(ctx context.Context, requester identity.Subject, apps []application.LoanApplication) ([]ApplicationView, error) {
	staff := requester.Role.Staff()
	ids := make([]string, 0, len(apps)*3)
	for i := range apps {
		if staff {
			ids = append(ids, apps[i].OwnerID)
		}
		if apps[i].VerifiedBy != nil {
			ids = append(ids, *apps[i].VerifiedBy)
		}
		if apps[i].ApprovedBy != nil {
			ids = append(ids, *apps[i].ApprovedBy)
		}
	}
	profiles, err := m.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ApplicationView, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		v := ApplicationView{ApplicationDTO: toDTO(a)}
		if staff {
			v.Owner = party(profiles, a.OwnerID, true)
		}
		if a.VerifiedBy != nil {
			v.Verifier = party(profiles, *a.VerifiedBy, staff)
		}
		if a.ApprovedBy != nil {
			v.Approver = party(profiles, *a.ApprovedBy, staff)
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Manager) lookup(ctx context.Context, ids []string) (map[string]identity.Profile, error) {
	if len(ids) == 0 || m.dir == nil {
		return map[string]identity.Profile{}, nil
	}
	profiles, err := m.dir.Lookup(ctx, ids)
	if err != nil {
		return nil, apperr.Store("resolve identities", err)
	}
	return profiles, nil
}

func party(profiles map[string]identity.Profile, userID string, withEmail bool) *PartyDTO {
	p := &PartyDTO{UserID: userID}
	if prof, ok := profiles[userID]; ok {
		p.Name = prof.Name
		if withEmail {
			p.Email = prof.Email
		}
	}
	return p
}

// actionLabel bounds the metric label set to known actions.
func actionLabel(a application.Action) string {
	switch a {
	case application.ActionVerify, application.ActionApprove, application.ActionReject:
		return string(a)
	case "":
		return ""
	}
	return "invalid"
}

func joinActions(actions []application.Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
