package db

import (
	"context"
	"errors"
	"time"

	"github.com/prasetyowira/qrstudio/constant"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// PreferenceRepository implements studio.PreferenceStore on SQLite
type PreferenceRepository struct {
	db *gorm.DB
}

// PreferenceModel is the GORM model for a persisted preference
type PreferenceModel struct {
	ID        uint   `gorm:"primaryKey"`
	Scope     string `gorm:"uniqueIndex:idx_scope_key;not null"`
	Key       string `gorm:"column:pref_key;uniqueIndex:idx_scope_key;not null"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// GormLogger routes GORM logs through the application logger
type GormLogger struct{}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL statements at debug level, and failures at error level.
// A missing row is not a failure.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewPreferenceRepository opens (or creates) the SQLite database at dbPath
func NewPreferenceRepository(dbPath string) (*PreferenceRepository, error) {
	ctx := context.Background()

	appLogger.CtxDebug(ctx, "Opening SQLite database", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: &GormLogger{},
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&PreferenceModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Database initialized successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &PreferenceRepository{db: db}, nil
}

// Get returns the value stored under (scope, key). found is false when
// nothing has been stored yet.
func (r *PreferenceRepository) Get(ctx context.Context, scope, key string) (string, bool, error) {
	var model PreferenceModel
	err := r.db.WithContext(ctx).
		Where("scope = ? AND pref_key = ?", scope, key).
		Take(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		appLogger.CtxDebug(ctx, "Preference not set", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGet,
			Data: map[string]interface{}{
				constant.DataScope: scope,
				constant.DataKey:   key,
			},
		})
		return "", false, nil
	}
	if err != nil {
		appLogger.CtxError(ctx, "Failed to read preference", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGet,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBLookup,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataScope: scope,
				constant.DataKey:   key,
			},
		})
		return "", false, err
	}

	return model.Value, true, nil
}

// Set stores value under (scope, key), replacing any previous value
func (r *PreferenceRepository) Set(ctx context.Context, scope, key, value string) error {
	model := PreferenceModel{
		Scope:     scope,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model)

	if result.Error != nil {
		appLogger.CtxError(ctx, "Failed to store preference", appLogger.LoggerInfo{
			ContextFunction: constant.CtxSet,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBUpsert,
				Message: result.Error.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataScope: scope,
				constant.DataKey:   key,
			},
		})
		return result.Error
	}

	appLogger.CtxDebug(ctx, "Preference stored", appLogger.LoggerInfo{
		ContextFunction: constant.CtxSet,
		Data: map[string]interface{}{
			constant.DataScope:        scope,
			constant.DataKey:          key,
			constant.DataRowsAffected: result.RowsAffected,
		},
	})

	return nil
}

// Close closes the database connection
func (r *PreferenceRepository) Close() error {
	ctx := context.Background()
	sqlDB, err := r.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing database connection", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}
