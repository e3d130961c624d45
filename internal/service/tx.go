package service

import "gorm.io/gorm"

// rollback / commit 兼容 mock 聚合下 BeginTx 返回的 nil 事务

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func commit(tx *gorm.DB) error {
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}
