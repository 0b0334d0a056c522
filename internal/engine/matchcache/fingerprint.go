package matchcache

import (
	"crypto/sha256"
	"fmt"

	"match-engine/internal/models"
)

// Fingerprint keys a cache entry to both the brief content and the designer
// pool version. Editing the brief or reindexing the pool yields a new key, so
// stale results age out without explicit invalidation of old entries.
func Fingerprint(brief *models.Brief, poolVersion int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|pool:%d", brief.ContentHash(), poolVersion)))
	return fmt.Sprintf("%x", sum[:])
}
