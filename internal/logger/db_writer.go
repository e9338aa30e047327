package logger

import (
	"context"
	"fmt"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/config"
	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	CompanyID string
	Caller    string
}

// DBLogWriter persists log entries from a buffered channel on a single goroutine.
type DBLogWriter struct {
	collection *mongo.Collection
	logChan    chan LogEntry
	appId      string
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		collection: mongodb.DB.Collection("app_logs"),
		logChan:    make(chan LogEntry, 1000),
		appId:      cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks the caller; entries are dropped when the buffer is full.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := common_models.Log{
			Message:      entry.Message,
			Caller:       entry.Caller,
			IpAddress:    entry.IpAddress,
			CompanyID:    entry.CompanyID,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.collection.InsertOne(ctx, record)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
