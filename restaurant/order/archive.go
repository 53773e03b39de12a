package order

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Archive is an append-only SQLite record of every created order. It exists
// alongside the in-memory ledger for audit; it is never read back on the
// ordering path.
type Archive struct {
	db *sql.DB
}

func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open order archive: %w", err)
	}

	a := &Archive{db: db}
	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize order archive schema: %w", err)
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS orders (
        order_id TEXT PRIMARY KEY,
        customer_name TEXT NOT NULL,
        location TEXT NOT NULL,
        phone TEXT NOT NULL,
        subtotal REAL NOT NULL,
        tax REAL NOT NULL,
        total REAL NOT NULL,
        status TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS order_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        order_id TEXT NOT NULL,
        item_id TEXT NOT NULL,
        name TEXT NOT NULL,
        quantity INTEGER NOT NULL,
        price REAL NOT NULL,
        special_request TEXT,
        FOREIGN KEY (order_id) REFERENCES orders(order_id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
    `
	if _, err := a.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

func (a *Archive) Record(o Order) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO orders (order_id, customer_name, location, phone, subtotal, tax, total, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Customer.Name, o.Customer.Location, o.Customer.Phone,
		o.Totals.Subtotal, o.Totals.Tax, o.Totals.Total,
		string(o.Status), o.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(`
            INSERT INTO order_items (order_id, item_id, name, quantity, price, special_request)
            VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, it.ItemID, it.Name, it.Quantity, it.Price, it.SpecialRequest)
		if err != nil {
			return fmt.Errorf("insert order item %s/%s: %w", o.ID, it.ItemID, err)
		}
	}

	return tx.Commit()
}

func (a *Archive) UpdateStatus(orderID string, status Status) error {
	res, err := a.db.Exec(`UPDATE orders SET status = ? WHERE order_id = ?`,
		string(status), strings.TrimSpace(orderID))
	if err != nil {
		return fmt.Errorf("update archived order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrOrderNotFound, orderID)
	}
	return nil
}

// ArchivedOrder is the flat row shape read back by reporting and tests.
type ArchivedOrder struct {
	OrderID      string
	CustomerName string
	Location     string
	Phone        string
	Total        float64
	Status       string
	ItemCount    int
}

func (a *Archive) OrderRow(orderID string) (ArchivedOrder, error) {
	var row ArchivedOrder
	err := a.db.QueryRow(`
        SELECT o.order_id, o.customer_name, o.location, o.phone, o.total, o.status,
               (SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.order_id)
        FROM orders o WHERE o.order_id = ?`, strings.TrimSpace(orderID)).
		Scan(&row.OrderID, &row.CustomerName, &row.Location, &row.Phone,
			&row.Total, &row.Status, &row.ItemCount)
	if err == sql.ErrNoRows {
		return ArchivedOrder{}, fmt.Errorf("%w: %q", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return ArchivedOrder{}, fmt.Errorf("read archived order: %w", err)
	}
	return row, nil
}
