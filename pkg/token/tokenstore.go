package tokenstore

import (
	"sync"
	"time"
)

// In-memory jti revocation store. Entries carry the revoking token's expiry
// so the map does not grow without bound; a janitor sweeps stale ones.
var (
	mu      sync.RWMutex
	revoked = map[string]int64{} // jti -> unix expiry; 0 = never expires
	once    sync.Once
)

// Revoke marks a jti as revoked until ttl elapses. ttl<=0 keeps it revoked
// forever.
func Revoke(jti string, ttl time.Duration) {
	if jti == "" {
		return
	}
	once.Do(func() { go janitor(time.Minute) })
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).Unix()
	}
	mu.Lock()
	revoked[jti] = exp
	mu.Unlock()
}

func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	mu.RLock()
	exp, ok := revoked[jti]
	mu.RUnlock()
	if !ok {
		return false
	}
	if exp != 0 && exp < time.Now().Unix() {
		mu.Lock()
		delete(revoked, jti)
		mu.Unlock()
		return false
	}
	return true
}

func janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		now := time.Now().Unix()
		mu.Lock()
		for jti, exp := range revoked {
			if exp != 0 && exp < now {
				delete(revoked, jti)
			}
		}
		mu.Unlock()
	}
}
