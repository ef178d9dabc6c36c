// Package seed bootstraps the cross-tenant master account so a fresh
// install can be administered immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/auth/password"
	"github.com/varejotech/balcao/internal/tenantctx"
)

const (
	defaultMasterEmail    = "master@balcao.app"
	defaultMasterPassword = "trocar123"
	defaultMasterName     = "Operador Master"
)

// EnsureMasterUser creates the master operator account if none exists.
// The seeded credential carries mustChangePassword so it cannot survive
// first login unchanged.
func EnsureMasterUser(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&authdomain.User{}).
			Where("role = ?", tenantctx.RoleMaster).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(defaultMasterPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Create(&authdomain.User{
			ID:                 node.Generate(),
			Name:               defaultMasterName,
			Email:              defaultMasterEmail,
			Role:               tenantctx.RoleMaster,
			PasswordHash:       hashed,
			MustChangePassword: true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}).Error
	})
}
