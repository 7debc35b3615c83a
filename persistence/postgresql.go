// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/slotserver/models"
)

// PostgreSQL is the raw database/sql implementation, for deployments
// that would rather not carry GORM at runtime.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS players (
            id SERIAL PRIMARY KEY,
            name VARCHAR(64) UNIQUE NOT NULL,
            balance INTEGER NOT NULL DEFAULT 1000,
            total_winnings INTEGER NOT NULL DEFAULT 0,
            avatar VARCHAR(32) NOT NULL DEFAULT '',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS spin_records (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(64) NOT NULL,
            player_name VARCHAR(64) NOT NULL,
            reels VARCHAR(64) NOT NULL,
            bet_amount INTEGER NOT NULL,
            win_amount INTEGER NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_players_name ON players(name);
        CREATE INDEX IF NOT EXISTS idx_spin_records_player_id ON spin_records(player_id);
        CREATE INDEX IF NOT EXISTS idx_spin_records_created_at ON spin_records(created_at);
    `)

	return err
}

func (p *PostgreSQL) LoadPlayer(name string) (models.PlayerRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var record models.PlayerRecord
	query := `SELECT id, name, balance, total_winnings, avatar, created_at, updated_at
	          FROM players WHERE name = $1`
	err := p.db.QueryRowContext(ctx, query, name).Scan(
		&record.ID, &record.Name, &record.Balance, &record.TotalWinnings,
		&record.Avatar, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.PlayerRecord{}, ErrRecordNotFound
		}
		return models.PlayerRecord{}, err
	}
	return record, nil
}

func (p *PostgreSQL) SavePlayer(record models.PlayerRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// UPSERT 操作 (PostgreSQL 9.5+)
	query := `
        INSERT INTO players (name, balance, total_winnings, avatar)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name)
        DO UPDATE SET balance = $2, total_winnings = $3, avatar = $4, updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query,
		record.Name, record.Balance, record.TotalWinnings, record.Avatar)
	return err
}

func (p *PostgreSQL) SaveSpinRecord(record models.SpinRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO spin_records (player_id, player_name, reels, bet_amount, win_amount)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := p.db.ExecContext(ctx, query,
		record.PlayerID, record.PlayerName, record.Reels,
		record.BetAmount, record.WinAmount)
	return err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

// ReelsString joins drawn symbols for storage, e.g. "cherry,bar,seven".
func ReelsString(reels [3]models.Symbol) string {
	parts := make([]string, len(reels))
	for i, symbol := range reels {
		parts[i] = string(symbol)
	}
	return strings.Join(parts, ",")
}
