package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/raxnet/patrol/internal/setup/telemetry/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceType represents the type of service being initialized.
type ServiceType int

const (
	ServiceCLI ServiceType = iota
	ServiceMigration
	ServiceExport
)

// String returns the component name used for the session directory.
func (s ServiceType) String() string {
	switch s {
	case ServiceCLI:
		return "cli"
	case ServiceMigration:
		return "migration"
	case ServiceExport:
		return "export"
	default:
		return "unknown"
	}
}

// RequestTimeout returns the time budget of a single command.
func (s ServiceType) RequestTimeout() time.Duration {
	switch s {
	case ServiceMigration:
		return 10 * time.Minute
	case ServiceExport:
		return 2 * time.Minute
	default:
		return 90 * time.Second
	}
}

// Manager handles the creation and management of log files and directories.
// Every run writes into its own timestamped session directory.
type Manager struct {
	instanceID        string   // Unique identifier for this program instance
	serviceType       ServiceType
	currentSessionDir string   // Path to the current session's log directory
	logDir            string   // Base directory for all logs
	level             string   // Logging level (debug, info, warn, error)
	maxLogsToKeep     int      // Maximum number of log sessions to retain
	maxLogLines       int      // Maximum number of lines to keep in each log file
	closers           []func() // Open log files
}

// NewManager creates a new Manager instance.
func NewManager(serviceType ServiceType, logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		serviceType:   serviceType,
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
	}
}

// GetLoggers initializes the main and database loggers.
func (lm *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	dbLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "database.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database logger: %w", err)
	}

	return mainLogger, dbLogger, nil
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.currentSessionDir
}

// GetInstanceID returns the unique instance identifier for this program run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// Stop closes every log file opened by the manager.
func (lm *Manager) Stop() {
	for _, closeFn := range lm.closers {
		closeFn()
	}
	lm.closers = nil
}

// setupLogDirectories creates the base directory, rotates old sessions and
// creates the directory for this session.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().Format("2006-01-02_15-04-05"), lm.serviceType)
	lm.currentSessionDir = filepath.Join(lm.logDir, name)
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger that writes to a line-capped file and
// mirrors errors into OpenTelemetry spans.
func (lm *Manager) initLogger(path string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	rotator, err := logger.NewRotator(path, lm.maxLogLines)
	if err != nil {
		return nil, err
	}
	lm.closers = append(lm.closers, func() { _ = rotator.Close() })

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zapLevel,
	)

	return zap.New(
		zapcore.NewTee(fileCore, NewCore(zapcore.ErrorLevel)),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("instance_id", lm.instanceID)),
	), nil
}

// rotateLogSessions removes the oldest sessions so that at most
// maxLogsToKeep remain after the new one is created.
func (lm *Manager) rotateLogSessions() error {
	if lm.maxLogsToKeep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(lm.logDir)
	if err != nil {
		return err
	}

	type session struct {
		path    string
		modTime time.Time
	}

	sessions := make([]session, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, session{
			path:    filepath.Join(lm.logDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	excess := len(sessions) - (lm.maxLogsToKeep - 1)
	if excess <= 0 {
		return nil
	}

	slices.SortFunc(sessions, func(a, b session) int {
		return a.modTime.Compare(b.modTime)
	})

	for _, s := range sessions[:excess] {
		if err := os.RemoveAll(s.path); err != nil {
			return err
		}
	}

	return nil
}
