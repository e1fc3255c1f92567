package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migration represents a database migration
type Migration struct {
	ID string
	Up func(*gorm.DB) error
}

var (
	mu         sync.Mutex
	migrations = make(map[string]Migration)
)

// Register adds a new migration to the registry
func Register(id string, up func(*gorm.DB) error) {
	mu.Lock()
	defer mu.Unlock()
	migrations[id] = Migration{ID: id, Up: up}
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// RunMigrations executes all pending migrations in ID order
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	mu.Lock()
	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		pending = append(pending, m)
	}
	mu.Unlock()
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, m := range executed {
		done[m.ID] = true
	}

	log := logger.Component("migrations")
	for _, m := range pending {
		if done[m.ID] {
			continue
		}
		log.Info("Running migration", "id", m.ID)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("failed to run migration %s: %w", m.ID, err)
			}
			if err := tx.Create(&MigrationRecord{ID: m.ID}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// LoadSQLMigrations registers the embedded SQL migrations. Each file may
// hold several statements separated by semicolons.
func LoadSQLMigrations() error {
	files, err := fs.ReadDir(sqlFiles, "sql")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		content, err := sqlFiles.ReadFile(path.Join("sql", file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		statements := splitStatements(string(content))
		Register(strings.TrimSuffix(file.Name(), ".sql"), func(db *gorm.DB) error {
			for _, stmt := range statements {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		})
	}

	return nil
}

func splitStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
