package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/comexdata/customs_backend/config"
	"gorm.io/gorm"
)

// AcquireOperationLock serializes mutation per operation across instances
// using MySQL advisory locks: at most one in-flight status transition or
// crossing execution per operation.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the mutating transaction.
func AcquireOperationLock(tx *gorm.DB, operationId int) error {
	lockName := fmt.Sprintf("operation:%d", operationId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire operation lock for operation_id=%d", operationId)
	}
	return nil
}

func ReleaseOperationLock(tx *gorm.DB, operationId int) {
	lockName := fmt.Sprintf("operation:%d", operationId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// tryRedisOperationLock is a best-effort fast-fail in front of the advisory
// lock. Correctness must not depend on Redis: the MySQL lock above is the
// authoritative serializer. When Redis is down or the lock cannot be obtained
// we fall through and let MySQL queue the caller.
func tryRedisOperationLock(ctx context.Context, operationId int) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lockKey := fmt.Sprintf("operation-lock:%d", operationId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		// Another instance holds the fast lock; MySQL will serialize us.
		return func() {}
	}
	if err != nil {
		config.LogWarn(config.GetLogger(), "operationLock.go", "tryRedisOperationLock",
			"redis lock obtain failed", map[string]interface{}{"operation_id": operationId}, err)
		return func() {}
	}
	return func() { _ = lock.Release(ctx) }
}
