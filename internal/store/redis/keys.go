package redis

// KeyPrefixBoard is the prefix for per-user board documents.
const KeyPrefixBoard = "linkdeck:board:"

// BoardKey returns the Redis key for a user's board document.
func BoardKey(userID string) string {
	return KeyPrefixBoard + userID
}
