package redis

import "github.com/redis/rueidis"

// newStoreWithClient wraps an existing rueidis client, usually a mock.
func newStoreWithClient(c rueidis.Client) *Store {
	return &Store{client: c}
}
