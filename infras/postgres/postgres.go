package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"todoapp/config"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
)

// Connection holds a read/write pair of database handles. Reads (list/get)
// go through Read; every mutation goes through Write inside a transaction.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  createReadConn(*config),
		Write: createWriteConn(*config),
	}
}

func createWriteConn(config config.Config) *sqlx.DB {
	pg := config.DB.Postgres.Write

	return createConnection("write", pg.Username, pg.Password, pg.Host, pg.Port, pg.Name, pg.SSLMode,
		config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
}

func createReadConn(config config.Config) *sqlx.DB {
	pg := config.DB.Postgres.Read

	return createConnection("read", pg.Username, pg.Password, pg.Host, pg.Port, pg.Name, pg.SSLMode,
		config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
}

func createConnection(name, username, password, host, port, dbName, sslMode string, maxRetry, waitTime int) *sqlx.DB {
	descriptor := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		username,
		password,
		net.JoinHostPort(host, port),
		dbName,
		sslMode,
	)

	for retry := range maxRetry {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			log.
				Info().
				Str("name", name).
				Str("host", host).
				Str("port", port).
				Str("dbName", dbName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", name).
			Str("host", host).
			Str("port", port).
			Str("dbName", dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}
