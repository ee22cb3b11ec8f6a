package userauth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sessions is the refresh session repository contract.
type Sessions interface {
	repository.Repository[*UserSession]

	GetByRefreshToken(ctx context.Context, token string) (*UserSession, error)
	GetByRefreshTokenTx(ctx context.Context, tx bun.IDB, token string) (*UserSession, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*UserSession, error)
	GetActiveByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*UserSession, error)
	MarkRevoked(ctx context.Context, id uuid.UUID) error
	MarkRevokedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	RevokeForUser(ctx context.Context, userID uuid.UUID) error
	RevokeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
	DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type sessions struct {
	repository.Repository[*UserSession]
	db *bun.DB
}

var (
	_ Sessions                            = (*sessions)(nil)
	_ repository.Repository[*UserSession] = (*sessions)(nil)
)

func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*UserSession](db, repository.ModelHandlers[*UserSession]{
		NewRecord: func() *UserSession { return &UserSession{} },
		GetID: func(s *UserSession) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *UserSession, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "refresh_token"
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

func (a *sessions) GetByRefreshToken(ctx context.Context, token string) (*UserSession, error) {
	return a.GetByRefreshTokenTx(ctx, a.db, token)
}

func (a *sessions) GetByRefreshTokenTx(ctx context.Context, tx bun.IDB, token string) (*UserSession, error) {
	record := &UserSession{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.refresh_token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *sessions) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*UserSession, error) {
	return a.GetActiveByUserTx(ctx, a.db, userID)
}

func (a *sessions) GetActiveByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*UserSession, error) {
	record := &UserSession{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.revoked = ?", false).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *sessions) MarkRevoked(ctx context.Context, id uuid.UUID) error {
	return a.MarkRevokedTx(ctx, a.db, id)
}

func (a *sessions) MarkRevokedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*UserSession)(nil)).
		Set("revoked = ?", true).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

func (a *sessions) RevokeForUser(ctx context.Context, userID uuid.UUID) error {
	return a.RevokeForUserTx(ctx, a.db, userID)
}

func (a *sessions) RevokeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*UserSession)(nil)).
		Set("revoked = ?", true).
		Where("user_id = ?", userID).
		Where("revoked = ?", false).
		Exec(ctx)

	return err
}

func (a *sessions) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return a.DeleteForUserTx(ctx, a.db, userID)
}

func (a *sessions) DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*UserSession)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	return err
}
