package migration

import (
	"fmt"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/pkg/kvstore"
	"gorm.io/gorm"
)

// Target names accepted by cmd/migrate
const (
	TargetAll      = "all"
	TargetUsers    = "users"
	TargetProducts = "products"
	TargetKV       = "kv"
)

// Run creates or updates every table the server needs
func Run(db *gorm.DB) error {
	return RunTarget(db, TargetAll)
}

// RunTarget migrates a single table group
func RunTarget(db *gorm.DB, target string) error {
	models, err := modelsFor(target)
	if err != nil {
		return err
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// Rollback drops the tables of target. products 는 users 를 참조하므로 먼저 삭제
func Rollback(db *gorm.DB, target string) error {
	models, err := modelsFor(target)
	if err != nil {
		return err
	}
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop %T: %w", models[i], err)
		}
	}
	return nil
}

// Counts returns row counts per table, used by cmd/migrate -verify
func Counts(db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for name, m := range map[string]interface{}{
		"users":      &domain.User{},
		"products":   &domain.Product{},
		"kv_entries": &kvstore.Entry{},
	} {
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

func modelsFor(target string) ([]interface{}, error) {
	switch target {
	case TargetAll, "":
		return []interface{}{&domain.User{}, &domain.Product{}, &kvstore.Entry{}}, nil
	case TargetUsers:
		return []interface{}{&domain.User{}}, nil
	case TargetProducts:
		return []interface{}{&domain.User{}, &domain.Product{}}, nil
	case TargetKV:
		return []interface{}{&kvstore.Entry{}}, nil
	default:
		return nil, fmt.Errorf("unknown migration target %q", target)
	}
}
