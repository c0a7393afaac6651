package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores trades and equity snapshots in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, qty, exit_price, realized_pl, commission, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Qty, t.ExitPrice, t.RealizedPL, t.Commission, t.CloseTime,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, cash, positions_value, drawdown, high_water)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time, e.Equity, e.Cash, e.PositionsValue, e.Drawdown, e.HighWater,
	)
	return err
}

// ListTrades returns all stored trades ordered by close time.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, qty, exit_price, realized_pl, commission, close_time
		FROM trades ORDER BY close_time, trade_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.Symbol, &t.Qty, &t.ExitPrice,
			&t.RealizedPL, &t.Commission, &t.CloseTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
