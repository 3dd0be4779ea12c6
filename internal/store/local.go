package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cafesync/internal/model"
)

// Local keeps the tables in a SQLite file, for offline runs and inspection.
type Local struct {
	DB *gorm.DB
}

type localCafe struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"index"`
	Address     string
	Phone       *string
	Latitude    *float64
	Longitude   *float64
	Rating      float64
	ReviewCount int
	IsActive    bool
	CreatedAt   time.Time
}

func (localCafe) TableName() string { return model.TableCafes }

type localImage struct {
	ID        string `gorm:"primaryKey"`
	CafeID    string `gorm:"index"`
	ImageURL  string
	IsPrimary bool
	CreatedAt time.Time
}

func (localImage) TableName() string { return model.TableCafeImages }

type localMenu struct {
	ID          string `gorm:"primaryKey"`
	CafeID      string `gorm:"index"`
	Name        string
	Price       float64
	Category    string
	Description string
	IsAvailable bool
	CreatedAt   time.Time
}

func (localMenu) TableName() string { return model.TableCafeMenus }

type localHours struct {
	ID        string `gorm:"primaryKey"`
	CafeID    string `gorm:"index"`
	DayOfWeek int
	OpenTime  *string
	CloseTime *string
	IsClosed  bool
}

func (localHours) TableName() string { return model.TableOperatingHours }

type localReview struct {
	ID             string `gorm:"primaryKey"`
	CafeID         string `gorm:"index"`
	UserID         *string
	Rating         int
	Comment        string
	IsAdminCreated bool
	CreatedAt      time.Time
}

func (localReview) TableName() string { return model.TableReviews }

// OpenLocal opens (or creates) the SQLite file and migrates the cafe tables.
func OpenLocal(path string) (*Local, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&localCafe{}, &localImage{}, &localMenu{}, &localHours{}, &localReview{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite %s: %w", path, err)
	}
	return &Local{DB: db}, nil
}

func (l *Local) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	tx := l.DB.WithContext(ctx).Table(table)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, f := range q.Where {
		tx = tx.Where(fmt.Sprintf("%s = ?", quoteColumn(f.Column)), f.Value)
	}
	orderBy := q.OrderBy
	if orderBy == "" && q.Limit > 0 {
		orderBy = "id"
	}
	if orderBy != "" {
		tx = tx.Order(quoteColumn(orderBy))
	}
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, newError(KindStatus, "select", table, err)
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

func (l *Local) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(rows))
	for _, r := range withIDs(rows) {
		batch = append(batch, derefRow(r))
	}
	if err := l.DB.WithContext(ctx).Table(table).Create(&batch).Error; err != nil {
		return newError(KindStatus, "insert", table, err)
	}
	return nil
}

func (l *Local) Update(ctx context.Context, table string, where Eq, values Row) (int, error) {
	res := l.DB.WithContext(ctx).
		Table(table).
		Where(fmt.Sprintf("%s = ?", quoteColumn(where.Column)), where.Value).
		Updates(derefRow(values))
	if res.Error != nil {
		return 0, newError(KindStatus, "update", table, res.Error)
	}
	return int(res.RowsAffected), nil
}

func (l *Local) Delete(ctx context.Context, table, column string, values []any) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	res := l.DB.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", quoteColumn(table), quoteColumn(column)),
		values,
	)
	if res.Error != nil {
		return 0, newError(KindStatus, "delete", table, res.Error)
	}
	return int(res.RowsAffected), nil
}

func (l *Local) Close() error {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func quoteColumn(name string) string {
	return `"` + name + `"`
}

// derefRow troca ponteiros por valores (ou nil) antes de passar ao gorm.
func derefRow(r Row) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		switch t := v.(type) {
		case *string:
			if t == nil {
				out[k] = nil
			} else {
				out[k] = *t
			}
		case *float64:
			if t == nil {
				out[k] = nil
			} else {
				out[k] = *t
			}
		default:
			out[k] = v
		}
	}
	return out
}
