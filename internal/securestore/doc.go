// Package securestore provides the key-value secure storage used for the
// cached backend URL and the auth token.
//
// Three backends implement [Store]:
//
//   - [Keyring]: the operating system keyring (Secret Service, macOS
//     Keychain, Windows Credential Manager). Default.
//   - [File]: a bbolt file with every value sealed by AES-256-GCM under a
//     per-key HKDF subkey of a random local key. Used on headless machines.
//   - [Memory]: process-local, for tests and ephemeral runs.
//
// Get returns [ErrNotFound] for absent keys; Delete treats an absent key as
// success.
package securestore
