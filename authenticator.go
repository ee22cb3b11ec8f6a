package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterInput carries a registration request. The phone must have
// completed verification before Register accepts it.
type RegisterInput struct {
	Phone      string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Client     ClientInfo
}

// Authenticator owns the session lifecycle: registration, login,
// refresh rotation and revocation. Every state change lands in the
// audit sink best-effort; a failing sink never fails the flow.
type Authenticator struct {
	repo          RepositoryManager
	config        Config
	tokens        TokenIssuer
	phoneVerifier PhoneVerifier
	audit         AuditSink
	logger        Logger
	now           func() time.Time
}

// NewAuthenticator wires the session flows over the repositories.
func NewAuthenticator(repo RepositoryManager, config Config) *Authenticator {
	return &Authenticator{
		repo:   repo,
		config: config,
		tokens: NewTokenService(config),
		audit:  noopAuditSink{},
		logger: defLogger{},
		now:    time.Now,
	}
}

func (s *Authenticator) WithLogger(logger Logger) *Authenticator {
	s.logger = normalizeLogger(logger)
	return s
}

// WithAuditSink configures the sink receiving auth events.
func (s *Authenticator) WithAuditSink(sink AuditSink) *Authenticator {
	s.audit = normalizeAuditSink(sink)
	return s
}

// WithPhoneVerifier gates registration on a completed phone
// verification. Without one, registration is open.
func (s *Authenticator) WithPhoneVerifier(verifier PhoneVerifier) *Authenticator {
	s.phoneVerifier = verifier
	return s
}

// WithTokenIssuer swaps the access token implementation.
func (s *Authenticator) WithTokenIssuer(issuer TokenIssuer) *Authenticator {
	if issuer != nil {
		s.tokens = issuer
	}
	return s
}

// TokenIssuer returns the access token service in use.
func (s *Authenticator) TokenIssuer() TokenIssuer {
	return s.tokens
}

// Register creates a user and opens their first session. The phone
// must carry a verified marker; the marker is consumed on success so
// it cannot seed a second registration.
func (s *Authenticator) Register(ctx context.Context, input RegisterInput) (TokenPair, error) {
	phone := NormalizePhone(input.Phone)

	if s.phoneVerifier != nil {
		verified, err := s.phoneVerifier.IsVerified(ctx, phone)
		if err != nil {
			return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check phone verification")
		}
		if !verified {
			s.emitAuditEvent(ctx, AuditEntry{
				Action:          AuditUserLoginFailure,
				ActorIdentifier: phone,
				IPAddress:       input.Client.IPAddress,
				UserAgent:       input.Client.UserAgent,
				Payload:         map[string]any{"reason": "phone not verified"},
			})
			return TokenPair{}, ErrPhoneNotVerified
		}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return TokenPair{}, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Phone:        phone,
		Email:        NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		MiddleName:   input.MiddleName,
	}

	if id, err := hashid.NewUUID(phone); err == nil {
		user.ID = id
	}

	var pair TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		pair, err = s.openSessionTx(ctx, tx, user, input.Client)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return TokenPair{}, richErr
		}
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if s.phoneVerifier != nil {
		if err := s.phoneVerifier.Forget(ctx, phone); err != nil {
			s.logger.Warn("failed to consume verified phone marker: %v", err)
		}
	}

	s.emitAuditEvent(ctx, AuditEntry{
		UserID:          &user.ID,
		Action:          AuditUserRegister,
		ActorIdentifier: phone,
		IPAddress:       input.Client.IPAddress,
		UserAgent:       input.Client.UserAgent,
		TableName:       "users",
		RecordID:        user.ID.String(),
	})

	return pair, nil
}

// Authenticate exchanges phone and password for a token pair. Unknown
// phone and wrong password answer with the same error.
func (s *Authenticator) Authenticate(ctx context.Context, phone, password string, client ClientInfo) (TokenPair, error) {
	normalized := NormalizePhone(phone)

	fail := func(reason string, userID *uuid.UUID) (TokenPair, error) {
		s.emitAuditEvent(ctx, AuditEntry{
			UserID:          userID,
			Action:          AuditUserLoginFailure,
			ActorIdentifier: normalized,
			IPAddress:       client.IPAddress,
			UserAgent:       client.UserAgent,
			Payload:         map[string]any{"reason": reason},
		})
		clone := ErrAuthenticationFailed.Clone()
		if clone == nil {
			return TokenPair{}, ErrAuthenticationFailed
		}
		clone.Source = ErrAuthenticationFailed
		return TokenPair{}, clone.WithMetadata(map[string]any{
			"phone":      normalized,
			"ip":         client.IPAddress,
			"user_agent": client.UserAgent,
		})
	}

	user, err := s.repo.Users().GetByPhone(ctx, normalized)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return fail("unknown phone", nil)
		}
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return fail("wrong password", &user.ID)
	}

	var pair TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Sessions().RevokeForUserTx(ctx, tx, user.ID); err != nil {
			return err
		}

		pair, err = s.openSessionTx(ctx, tx, user, client)
		if err != nil {
			return err
		}

		return s.repo.Users().TrackSuccessfulLoginTx(ctx, tx, user)
	})
	if err != nil {
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open session")
	}

	s.emitAuditEvent(ctx, AuditEntry{
		UserID:          &user.ID,
		Action:          AuditUserLoginSuccess,
		ActorIdentifier: normalized,
		IPAddress:       client.IPAddress,
		UserAgent:       client.UserAgent,
	})

	return pair, nil
}

// Refresh rotates a session: the presented token is revoked and a new
// session replaces it atomically. A token that was already rotated,
// revoked or expired is rejected, so a stolen token stops working the
// moment its legitimate holder refreshes.
func (s *Authenticator) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (TokenPair, error) {
	session, err := s.repo.Sessions().GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up session")
	}

	if !session.Usable(s.now()) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.Users().GetByID(ctx, session.UserID.String())
	if err != nil {
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session user")
	}

	var pair TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Sessions().MarkRevokedTx(ctx, tx, session.ID); err != nil {
			return err
		}

		pair, err = s.openSessionTx(ctx, tx, user, client)
		return err
	})
	if err != nil {
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate session")
	}

	s.emitAuditEvent(ctx, AuditEntry{
		UserID:          &user.ID,
		Action:          AuditTokenRefresh,
		ActorIdentifier: user.Phone,
		IPAddress:       client.IPAddress,
		UserAgent:       client.UserAgent,
		TableName:       "user_sessions",
		RecordID:        session.ID.String(),
	})

	return pair, nil
}

// Revoke ends the session holding the refresh token. Revoking an
// already revoked session succeeds; an unknown token is rejected.
func (s *Authenticator) Revoke(ctx context.Context, refreshToken string, client ClientInfo) error {
	session, err := s.repo.Sessions().GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidRefreshToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up session")
	}

	if !session.Revoked {
		if err := s.repo.Sessions().MarkRevoked(ctx, session.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
		}
	}

	s.emitAuditEvent(ctx, AuditEntry{
		UserID:          &session.UserID,
		Action:          AuditSessionRevoke,
		IPAddress:       client.IPAddress,
		UserAgent:       client.UserAgent,
		TableName:       "user_sessions",
		RecordID:        session.ID.String(),
	})

	return nil
}

// openSessionTx creates a session row and signs the matching access
// token inside the caller's transaction.
func (s *Authenticator) openSessionTx(ctx context.Context, tx bun.Tx, user *User, client ClientInfo) (TokenPair, error) {
	session := &UserSession{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: uuid.NewString(),
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		ExpiresAt:    s.now().Add(time.Duration(s.config.GetRefreshTokenTTLSeconds()) * time.Second),
	}

	if _, err := s.repo.Sessions().CreateTx(ctx, tx, session); err != nil {
		return TokenPair{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	access, err := s.tokens.Generate(user)
	if err != nil {
		return TokenPair{}, err
	}

	s.emitAuditEvent(ctx, AuditEntry{
		UserID:          &user.ID,
		Action:          AuditSessionCreate,
		ActorIdentifier: user.Phone,
		IPAddress:       client.IPAddress,
		UserAgent:       client.UserAgent,
		Payload: map[string]any{
			"session_id": session.ID.String(),
			"expires_at": session.ExpiresAt,
		},
		TableName: "user_sessions",
		RecordID:  session.ID.String(),
	})

	return TokenPair{
		AccessToken:  access,
		RefreshToken: session.RefreshToken,
	}, nil
}

// emitAuditEvent records best-effort: a sink failure is logged and
// swallowed so auditing never breaks an auth flow.
func (s *Authenticator) emitAuditEvent(ctx context.Context, entry AuditEntry) {
	sink := normalizeAuditSink(s.audit)

	if entry.Payload == nil {
		entry.Payload = map[string]any{}
	}

	if err := sink.Record(ctx, entry); err != nil {
		s.logger.Warn("audit sink record error: %v", err)
	}
}
