package userauth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Sessions() Sessions
	AuditLogs() repository.Repository[*AuditLog]
	AuditActionTypes() repository.Repository[*AuditActionType]
}

func NewAuditLogsRepository(db *bun.DB) repository.Repository[*AuditLog] {
	handlers := repository.ModelHandlers[*AuditLog]{
		NewRecord: func() *AuditLog {
			return &AuditLog{}
		},
		GetID: func(record *AuditLog) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *AuditLog, id uuid.UUID) {
			record.ID = id
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewAuditActionTypesRepository(db *bun.DB) repository.Repository[*AuditActionType] {
	handlers := repository.ModelHandlers[*AuditActionType]{
		NewRecord: func() *AuditActionType {
			return &AuditActionType{}
		},
		GetID: func(record *AuditActionType) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *AuditActionType, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db               *bun.DB
	users            Users
	sessions         Sessions
	auditLogs        repository.Repository[*AuditLog]
	auditActionTypes repository.Repository[*AuditActionType]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:               db,
		users:            NewUsersRepository(db),
		sessions:         NewSessionsRepository(db),
		auditLogs:        NewAuditLogsRepository(db),
		auditActionTypes: NewAuditActionTypesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	if m.auditLogs == nil {
		return errors.New("repository auditLogs should be initialized")
	}

	if m.auditActionTypes == nil {
		return errors.New("repository auditActionTypes should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Sessions() Sessions {
	return m.sessions
}

func (m mngr) AuditLogs() repository.Repository[*AuditLog] {
	return m.auditLogs
}

func (m mngr) AuditActionTypes() repository.Repository[*AuditActionType] {
	return m.auditActionTypes
}
