// Package userauth provides phone-first authentication primitives: JWT
// access tokens, rotating refresh sessions, one-time code verification,
// and audit logging.
//
// Sessions:
//   - Access tokens are short-lived HS256 JWTs carrying the user id,
//     phone, and role. Validation is purely local; no session lookup.
//   - Refresh tokens are opaque single-use values stored per session.
//     Refresh rotates the session: the presented token is revoked and a
//     new one replaces it, so a replayed token fails immediately.
//
// Verification:
//   - The verification subpackage sends and checks one-time codes over
//     pluggable channels (SMS, email). Codes live in an ephemeral TTL
//     store behind the cache.Store interface with Redis and in-memory
//     adapters. Send is rate limited per identifier; failed checks are
//     counted atomically and capped.
//   - A completed verification leaves a short-lived verified marker
//     which Register consumes, gating sign-up on a proven phone number.
//
// Audit:
//   - AuditSink receives every auth event. AuditRecorder persists them
//     through Bun against a preloaded action-type catalog; flows call
//     it best-effort so a failing sink never blocks authentication.
package userauth
