package redis

import "strings"

// KeyNamespace prefixes every key music-svc writes.
const KeyNamespace = "ms"

// LoginAttemptsKey is the failed sign-in counter for an email, normalised so
// differently-cased spellings share one counter.
// Example: ms:login:attempts:jane@example.com
func LoginAttemptsKey(email string) string {
	return KeyNamespace + ":login:attempts:" + strings.ToLower(strings.TrimSpace(email))
}
