package badger

import (
	"context"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	logRecord interfaces.LogRecordStorage
	ticket    interfaces.TicketStorage
	user      interfaces.UserStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := newManagerFromDB(db, logger)
	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

func newManagerFromDB(db *BadgerDB, logger arbor.ILogger) *Manager {
	return &Manager{
		db:        db,
		logRecord: NewLogRecordStorage(db, logger),
		ticket:    NewTicketStorage(db, logger),
		user:      NewUserStorage(db, logger),
		logger:    logger,
	}
}

// LogRecordStorage returns the LogRecord storage interface
func (m *Manager) LogRecordStorage() interfaces.LogRecordStorage {
	return m.logRecord
}

// TicketStorage returns the Ticket storage interface
func (m *Manager) TicketStorage() interfaces.TicketStorage {
	return m.ticket
}

// UserStorage returns the User storage interface
func (m *Manager) UserStorage() interfaces.UserStorage {
	return m.user
}

// LoadUsersFromFile seeds the user directory from a TOML or YAML file
func (m *Manager) LoadUsersFromFile(ctx context.Context, path string) (int, error) {
	return LoadUsersFromFile(ctx, m.user, path, m.logger)
}

// DB returns the underlying database connection
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
