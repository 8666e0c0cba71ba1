package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func JobSnapshotKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func MediaHashKey(tenantID uuid.UUID, sha256 string) string {
	return fmt.Sprintf("media:hash:%s:%s", tenantID, sha256)
}
