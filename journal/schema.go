package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	qty REAL NOT NULL,
	exit_price REAL NOT NULL,
	realized_pl REAL NOT NULL,
	commission REAL NOT NULL,
	close_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	positions_value REAL NOT NULL,
	drawdown REAL NOT NULL,
	high_water REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
