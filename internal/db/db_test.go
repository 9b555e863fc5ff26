package db

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"freshcart/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "localhost",
		DBUser:     "test_user",
		DBPassword: "test_password",
		DBName:     "freshcart_test",
		DBPort:     "5432",
	}

	expected := "host=localhost user=test_user password=test_password dbname=freshcart_test port=5432 sslmode=disable"
	assert.Equal(t, expected, buildDSN(cfg))
}

func TestNewDatabaseInvalidDriver(t *testing.T) {
	cfg := &config.Config{}

	database, err := newDatabaseWithDriver(cfg, "no_such_driver")

	assert.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

// Minimal driver so the happy path of sql.Open plus Ping can run without a
// real database.

type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{}, nil
}

type mockConn struct{}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return &mockStmt{}, nil }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, nil }

type mockStmt struct{}

func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
}

func TestNewDatabaseSuccess(t *testing.T) {
	cfg := &config.Config{DBHost: "localhost"}

	database, err := newDatabaseWithDriver(cfg, "mock_driver_success")

	assert.NoError(t, err)
	assert.NotNil(t, database)
}
