package state

import (
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLOptions_DSN(t *testing.T) {
	opts := MySQLOptions{Host: "db", Port: 3306, User: "root", Password: "p@ss:word", Database: "eventshop"}

	cfg, err := mysqldriver.ParseDSN(opts.DSN())
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "eventshop", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestStateEntryModel_TableName(t *testing.T) {
	assert.Equal(t, "state_entries", StateEntryModel{}.TableName())
}
