package userauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Audit action names. The catalog table must contain a row for each
// before the recorder accepts entries.
const (
	AuditUserRegister     = "USER_REGISTER"
	AuditUserLoginSuccess = "USER_LOGIN_SUCCESS"
	AuditUserLoginFailure = "USER_LOGIN_FAILURE"
	AuditUserLogout       = "USER_LOGOUT"
	AuditPasswordChange   = "PASSWORD_CHANGE"
	AuditSessionCreate    = "SESSION_CREATE"
	AuditSessionRevoke    = "SESSION_REVOKE"
	AuditTokenRefresh     = "TOKEN_REFRESH"
	AuditUserUpdate       = "USER_UPDATE"
)

// RequiredAuditActions lists every action name the recorder resolves
// during Init.
func RequiredAuditActions() []string {
	return []string{
		AuditUserRegister,
		AuditUserLoginSuccess,
		AuditUserLoginFailure,
		AuditUserLogout,
		AuditPasswordChange,
		AuditSessionCreate,
		AuditSessionRevoke,
		AuditTokenRefresh,
		AuditUserUpdate,
	}
}

// AuditRecorder persists audit entries through the audit_logs
// repository. Action names resolve against a catalog preloaded by
// Init; an entry naming an unknown action is rejected rather than
// silently dropped.
type AuditRecorder struct {
	repo        RepositoryManager
	actionTypes map[string]uuid.UUID
	logger      Logger
	debug       bool
}

var _ AuditSink = (*AuditRecorder)(nil)

type AuditRecorderOption func(*AuditRecorder)

func WithAuditLogger(logger Logger) AuditRecorderOption {
	return func(r *AuditRecorder) {
		r.logger = normalizeLogger(logger)
	}
}

// WithAuditDebug pretty-prints each recorded payload to the logger.
func WithAuditDebug(debug bool) AuditRecorderOption {
	return func(r *AuditRecorder) {
		r.debug = debug
	}
}

func NewAuditRecorder(repo RepositoryManager, opts ...AuditRecorderOption) *AuditRecorder {
	recorder := &AuditRecorder{
		repo:        repo,
		actionTypes: map[string]uuid.UUID{},
		logger:      defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(recorder)
		}
	}

	return recorder
}

// Init preloads the action type catalog. It fails on the first missing
// action name so a misprovisioned catalog shows up at startup, not on
// the first audited request.
func (r *AuditRecorder) Init(ctx context.Context) error {
	cache := make(map[string]uuid.UUID, len(RequiredAuditActions()))

	for _, name := range RequiredAuditActions() {
		record, err := r.repo.AuditActionTypes().GetByIdentifier(ctx, name)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return errors.New("audit action type missing from catalog", errors.CategoryInternal).
					WithMetadata(map[string]any{
						"action": name,
					})
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load audit action types")
		}
		cache[name] = record.ID
	}

	r.actionTypes = cache

	return nil
}

// Record persists a single audit entry. Callers in the auth flows wrap
// it with emitAuditEvent, which downgrades failures to log lines.
func (r *AuditRecorder) Record(ctx context.Context, entry AuditEntry) error {
	actionID, ok := r.actionTypes[entry.Action]
	if !ok {
		return errors.New("unknown audit action", errors.CategoryInternal).
			WithMetadata(map[string]any{
				"action": entry.Action,
			})
	}

	record := &AuditLog{
		ID:              uuid.New(),
		UserID:          entry.UserID,
		ActionTypeID:    actionID,
		ActorIdentifier: entry.ActorIdentifier,
		IPAddress:       entry.IPAddress,
		UserAgent:       entry.UserAgent,
		Payload:         entry.Payload,
		TableName:       entry.TableName,
		RecordID:        entry.RecordID,
		PerformedAt:     time.Now(),
	}

	if r.debug {
		r.logger.Debug("audit %s %s", entry.Action, print.MaybePrettyJSON(entry.Payload))
	}

	if _, err := r.repo.AuditLogs().Create(ctx, record); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist audit log")
	}

	return nil
}
