package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // Driver do Postgres
	_ "modernc.org/sqlite" // SQLite para dev local e testes
)

// NewDBConnection abre a conexão e testa o Ping
func NewDBConnection(driver, connString string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, connString)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// :memory: é por conexão; uma só conexão mantém o mesmo banco
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
