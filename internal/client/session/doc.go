// Package session is the client's single source of truth for "who is logged
// in".
//
// # Model
//
// A Session is the triple (Token, Role, UserID) plus the optional Username
// taken from the token's subject. The zero Session means logged out. Role,
// UserID and Username are only ever set together, and only for a token the
// backend has verified.
//
// # Manager
//
// Manager owns the Session. The only way to change it is SetToken (Logout
// is SetToken with an empty token). For a non-empty token the Manager:
//
//  1. stores the token and clears the derived fields,
//  2. decodes the token payload (no signature check) for its expiry and
//     arms a ticker that logs the session out once the expiry passes; a
//     token that is already expired is logged out before step 3 and the
//     verification answer is discarded,
//  3. calls the Verifier with the token and, on success, fills in role and
//     user id and persists the token in the TokenStore.
//
// Any verification failure (rejected token, unreachable backend, malformed
// answer) resolves to the logged-out state and clears the TokenStore. Failures
// are logged and never returned to the caller.
//
// # Ordering
//
// Every token change starts a new generation. Verification results and
// expiry teardowns are applied only if their generation is still current,
// and the superseded verification request is canceled, so a slow answer for
// an old token can never overwrite the session of a newer one. The expiry
// ticker of a generation stops when the generation ends.
//
// # Observers
//
// OnChange registers listeners that receive a snapshot after each change, in
// order. Listeners run synchronously and must not call SetToken or Logout
// themselves; start a goroutine for that. A listener panic is logged and
// does not stop delivery to the others.
package session
