// internal/pkg/state/gorm.go
package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateEntryModel 对应数据库中的 state_entries 表
type StateEntryModel struct {
	StateKey  string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"type:mediumblob"`
	Version   int64  `gorm:"not null;default:1"`
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (StateEntryModel) TableName() string {
	return "state_entries"
}

// MySQLOptions 是建立连接所需的参数
type MySQLOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN 使用驱动自带的格式化拼接连接串
func (o MySQLOptions) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", o.Host, o.Port)
	cfg.DBName = o.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// OpenMySQL 打开连接并迁移 state_entries 表
func OpenMySQL(opts MySQLOptions) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(opts.DSN()), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrapf(err, "open mysql %s:%d/%s", opts.Host, opts.Port, opts.Database)
	}
	if err := db.AutoMigrate(&StateEntryModel{}); err != nil {
		return nil, errors.Wrap(err, "migrate state_entries")
	}
	return db, nil
}

// GormStore 用一张 key/value 表保存记录，version 列用于比较并交换
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, _, found, err := s.GetVersioned(ctx, key)
	return value, found, err
}

func (s *GormStore) GetVersioned(ctx context.Context, key string) ([]byte, string, bool, error) {
	var model StateEntryModel
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", false, nil
		}
		return nil, "", false, errors.Wrapf(err, "select state %s", key)
	}
	return model.Value, strconv.FormatInt(model.Version, 10), true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	model := StateEntryModel{StateKey: key, Value: value, Version: 1, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"version":    gorm.Expr("version + 1"),
			"updated_at": model.UpdatedAt,
		}),
	}).Create(&model).Error
	if err != nil {
		return errors.Wrapf(err, "upsert state %s", key)
	}
	return nil
}

func (s *GormStore) CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error) {
	now := time.Now().UTC()
	if version == "" {
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&StateEntryModel{StateKey: key, Value: value, Version: 1, UpdatedAt: now})
		if res.Error != nil {
			return false, errors.Wrapf(res.Error, "insert state %s", key)
		}
		return res.RowsAffected == 1, nil
	}

	expected, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return false, errors.Wrapf(err, "invalid version %q for %s", version, key)
	}
	res := s.db.WithContext(ctx).Model(&StateEntryModel{}).
		Where("state_key = ? AND version = ?", key, expected).
		Updates(map[string]interface{}{
			"value":      value,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "update state %s", key)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&StateEntryModel{}).Error
	if err != nil {
		return errors.Wrapf(err, "delete state %s", key)
	}
	return nil
}
