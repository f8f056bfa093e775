// Package authsync keeps a client-held identity token and a server-held
// session in agreement, and publishes a single consistent view of "who is
// signed in" to the rest of the application.
//
// Token events:
//   - The identity provider notifies us whenever its current token identity
//     changes, including refreshes and sign-outs. Feed those notifications to
//     Synchronizer.OnTokenEvent. Events are processed one at a time; a new
//     event never races an in-flight session exchange, and stale exchange
//     responses are discarded by sequence number.
//
// Session exchange:
//   - SessionExchanger models the two idempotent server endpoints: establish
//     a session from a bearer credential, and clear it. A rejected establish
//     call fails closed (forced sign-out); a failed clear call fails open
//     (local state stays signed out, the server session self-expires).
//
// Snapshots:
//   - Snapshot carries {IsSignedIn, CurrentUser, CurrentUserID} and is the
//     only surface consumers read. Identities that do not pass the
//     verification policy collapse to a signed-out snapshot even though the
//     underlying Identity may still exist internally. Subscribe through the
//     SnapshotPublisher; side effects such as profile persistence and
//     telemetry tagging run best-effort and never revert a snapshot.
package authsync
