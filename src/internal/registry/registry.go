// Package registry records generated descriptors in a SQL database so past
// runs can be listed and compared.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mysqlcfg "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VectorBits/clearsign/src/internal/descriptor"
	applog "github.com/VectorBits/clearsign/src/internal/logger"
)

var ErrEmptyDSN = errors.New("registry dsn is empty")

// Record is one generated descriptor.
type Record struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Contract      string    `gorm:"size:255;index;not null"`
	SourcePath    string    `gorm:"size:1024"`
	Pragma        string    `gorm:"size:32"`
	ChainID       int64     `gorm:"not null"`
	Address       string    `gorm:"size:255"`
	FunctionCount int       `gorm:"not null"`
	Signatures    string    `gorm:"type:text"`
	Document      string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
}

func (Record) TableName() string {
	return "descriptors"
}

// SignatureList splits Signatures back into "sig=selector" entries.
func (r Record) SignatureList() []string {
	if r.Signatures == "" {
		return nil
	}
	return strings.Split(r.Signatures, ";")
}

// NewRecord builds a record from a generation result. Signatures are stored
// sorted as "signature=selector" joined by ";".
func NewRecord(sourcePath, pragma string, res *descriptor.Result, document []byte) Record {
	formats := res.Descriptor.Display.Formats
	sigs := make([]string, 0, formats.Len())
	for _, sig := range formats.Keys() {
		sigs = append(sigs, sig+"="+descriptor.Selector(sig))
	}
	sort.Strings(sigs)

	rec := Record{
		Contract:      res.Descriptor.Metadata.ContractName,
		SourcePath:    sourcePath,
		Pragma:        pragma,
		FunctionCount: len(sigs),
		Signatures:    strings.Join(sigs, ";"),
		Document:      string(document),
	}
	if deps := res.Descriptor.Context.Contract.Deployments; len(deps) > 0 {
		rec.ChainID = deps[0].ChainID
		rec.Address = deps[0].Address
	}
	return rec
}

type Store struct {
	db *gorm.DB
}

// Open connects to the registry database and migrates its schema. driver is
// one of sqlite, postgres or mysql.
func Open(driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		normalized, err := normalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(normalized)
	default:
		return nil, fmt.Errorf("unsupported registry driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s registry: %w", driver, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registry: %w", err)
	}
	applog.Debug("registry ready (driver=%s)", driver)
	return &Store{db: db}, nil
}

// normalizeMySQLDSN forces parseTime so created_at scans into time.Time.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqlcfg.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Save stores rec, assigning an ID and timestamp when missing.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save descriptor record: %w", err)
	}
	return nil
}

// List returns records newest first. contract filters by name when set;
// limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, contract string, limit int) ([]Record, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if contract != "" {
		q = q.Where("contract = ?", contract)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []Record
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list descriptor records: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
