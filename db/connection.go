package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
)

// DBConnector is a common interface for database connections.
type DBConnector interface {
	Connect() (*sql.DB, error)
}

// Config describes a single named database connection.
type Config struct {
	ConnName string
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Params   string
}

func (c *Config) DataSource() *DataSource {
	return &DataSource{
		Dialect:  c.Driver,
		Host:     c.Host,
		Port:     strconv.Itoa(c.Port),
		Username: c.User,
		Password: c.Password,
		Name:     c.Database,
		Params:   c.Params,
	}
}

func (c *Config) DSN() string {
	dsn, err := c.DataSource().String()
	if err != nil {
		panic(err)
	}
	return dsn
}

// ProvideConfig is the ambient configuration constructor: plain function,
// no DI framework, matching how the rest of the core is wired up.
func ProvideConfig(cb func() *Config) *Config {
	return cb()
}

// Connection wraps a sqlx.DB with transaction bookkeeping. *sqlx.DB and
// *sqlx.Tx both already satisfy exec.Session directly, so c.DB or a *sqlx.Tx
// opened via BeginTx can be handed straight to exec.NewExecutor; Connection
// itself is never stored across an exec call, per the package's stateless
// per-statement design.
type Connection struct {
	*Config
	*sqlx.DB
	stdDb *sql.DB
	tx    *sqlx.Tx
}

// NewConnection creates a new Connection with the provided config.
func NewConnection(config *Config) *Connection {
	return &Connection{Config: config}
}

// GetDB returns the standard sql.DB connection.
func (c *Connection) GetDB() *sql.DB {
	return c.stdDb
}

// Open establishes a connection to the database based on the configuration.
func (c *Connection) Open() (*sql.DB, error) {
	connector := DBConnectorFactory(c.Config)

	stdDb, err := connector.Connect()
	if err != nil {
		return nil, err
	}

	c.stdDb = stdDb
	c.DB = sqlx.NewDb(stdDb, c.Config.Driver)

	return c.GetDB(), nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// BeginTx starts a new transaction. The returned *sqlx.Tx satisfies
// exec.Session, so an executor built on it runs Phase 1, Phase 2 and
// Phase 3 inside that one transaction; the exec package does not open a
// transaction itself.
func (c *Connection) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	if c.tx != nil {
		return nil, errors.New("db: already in a transaction")
	}
	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	c.tx = tx
	return tx, nil
}

// Commit commits the current transaction.
func (c *Connection) Commit() error {
	if c.tx == nil {
		return errors.New("db: not in a transaction")
	}
	err := c.tx.Commit()
	c.tx = nil
	return err
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback() error {
	if c.tx == nil {
		return errors.New("db: not in a transaction")
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}

// InTransaction returns true if the connection is in a transaction.
func (c *Connection) InTransaction() bool {
	return c.tx != nil
}

var (
	once     sync.Once
	instance *DatabaseManager
)

// DatabaseManager holds connections to various database instances.
type DatabaseManager struct {
	mutex       sync.RWMutex
	connections map[string]*Connection
}

// DM returns the singleton instance of DatabaseManager.
func DM() *DatabaseManager {
	once.Do(func() {
		instance = &DatabaseManager{
			connections: make(map[string]*Connection),
		}
	})
	return instance
}

// Add adds a new database connection to the manager.
func (m *DatabaseManager) Add(name string, conn *Connection) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.connections[name] = conn
}

// Get retrieves a database connection from the manager.
func (m *DatabaseManager) Get(name ...string) (*Connection, bool) {
	connName := "default"
	if len(name) > 0 {
		connName = name[0]
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	conn, found := m.connections[connName]
	return conn, found
}

// Remove closes and removes a database connection from the manager.
func (m *DatabaseManager) Remove(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	conn, ok := m.connections[name]
	if !ok {
		return fmt.Errorf("db: connection not found: %s", name)
	}
	if err := conn.Close(); err != nil {
		return err
	}
	delete(m.connections, name)
	return nil
}

// All returns all the connections.
func (m *DatabaseManager) All() map[string]*Connection {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.connections
}

// RemoveAll closes and removes all the existing connections.
func (m *DatabaseManager) RemoveAll() error {
	for connName := range m.All() {
		if err := m.Remove(connName); err != nil {
			return err
		}
	}
	return nil
}

// Get performs a type check on the retrieved database connection from the
// singleton instance. If no name is provided, it defaults to "default".
func Get(name ...string) *Connection {
	connName := "default"
	if len(name) > 0 {
		connName = name[0]
	}

	conn, found := instance.Get(connName)
	if !found {
		panic(fmt.Sprintf("db: connection '%s' not found", connName))
	}

	return conn
}
