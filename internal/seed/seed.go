// Package seed loads the demo portfolios and client profiles into the stores.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

type Portfolio struct {
	ID                  int
	ClientName          string
	PortfolioValue      float64
	RelationshipManager string
	Stock               string
}

type Client struct {
	Name        string   `bson:"name"`
	Risk        string   `bson:"risk"`
	Age         int      `bson:"age"`
	City        string   `bson:"city"`
	Preferences []string `bson:"preferences"`
}

func Portfolios() []Portfolio {
	return []Portfolio{
		{ID: 1, ClientName: "Alice", PortfolioValue: 10000000.00, RelationshipManager: "Rajiv Mehra", Stock: "HDFC Bank"},
		{ID: 2, ClientName: "Bob", PortfolioValue: 8500000.00, RelationshipManager: "Priya Shah", Stock: "Reliance"},
		{ID: 3, ClientName: "Charlie", PortfolioValue: 7000000.00, RelationshipManager: "Rajiv Mehra", Stock: "Infosys"},
		{ID: 4, ClientName: "Diana", PortfolioValue: 6500000.00, RelationshipManager: "Priya Shah", Stock: "TCS"},
		{ID: 5, ClientName: "Eve", PortfolioValue: 6000000.00, RelationshipManager: "Suresh Iyer", Stock: "HDFC Bank"},
		{ID: 6, ClientName: "Frank", PortfolioValue: 5000000.00, RelationshipManager: "Suresh Iyer", Stock: "Reliance"},
		{ID: 7, ClientName: "Grace", PortfolioValue: 9000000.00, RelationshipManager: "Rajiv Mehra", Stock: "Infosys"},
		{ID: 8, ClientName: "Heena", PortfolioValue: 7500000.00, RelationshipManager: "Priya Shah", Stock: "TCS"},
		{ID: 9, ClientName: "Ivan", PortfolioValue: 5500000.00, RelationshipManager: "Suresh Iyer", Stock: "HDFC Bank"},
		{ID: 10, ClientName: "Jaya", PortfolioValue: 8000000.00, RelationshipManager: "Rajiv Mehra", Stock: "Reliance"},
	}
}

func Clients() []Client {
	return []Client{
		{Name: "Alice", Risk: "High", Age: 45, City: "Mumbai", Preferences: []string{"tech", "banking"}},
		{Name: "Bob", Risk: "Low", Age: 52, City: "Delhi", Preferences: []string{"energy", "auto"}},
		{Name: "Charlie", Risk: "Medium", Age: 38, City: "Bangalore", Preferences: []string{"tech", "pharma"}},
		{Name: "Deepika", Risk: "High", Age: 41, City: "Pune", Preferences: []string{"pharma", "tech"}},
		{Name: "Amitabh", Risk: "High", Age: 60, City: "Mumbai", Preferences: []string{"tech", "auto"}},
		{Name: "Priya", Risk: "Low", Age: 35, City: "Chennai", Preferences: []string{"banking", "energy"}},
	}
}

// PortfoliosDDL returns the CREATE TABLE statement for driver. The embedded
// duckdb fixture stores values as DOUBLE and skips the key constraint, which
// duckdb checks eagerly when a transaction deletes and reinserts the same ids.
func PortfoliosDDL(driver string) string {
	idType, valueType := "INTEGER PRIMARY KEY", "DECIMAL(20,2)"
	switch driver {
	case "pgx":
		valueType = "NUMERIC(20,2)"
	case "duckdb":
		idType, valueType = "INTEGER", "DOUBLE"
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id %s,
	client_name VARCHAR(255),
	portfolio_value %s,
	relationship_manager VARCHAR(255),
	stock VARCHAR(255)
)`, schema.PortfoliosTable, idType, valueType)
}

func insertPortfolioSQL(driver string) string {
	placeholders := []string{"?", "?", "?", "?", "?"}
	if driver == "pgx" {
		placeholders = []string{"$1", "$2", "$3", "$4", "$5"}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (id, client_name, portfolio_value, relationship_manager, stock) VALUES (%s)",
		schema.PortfoliosTable,
		strings.Join(placeholders, ", "),
	)
}

// Relational creates the portfolios table if needed and replaces its rows
// with the fixture in one transaction.
func Relational(ctx context.Context, db *sql.DB, driver string) (int, error) {
	if _, err := db.ExecContext(ctx, PortfoliosDDL(driver)); err != nil {
		return 0, fmt.Errorf("create %s table: %w", schema.PortfoliosTable, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+schema.PortfoliosTable); err != nil {
		return 0, fmt.Errorf("clear %s: %w", schema.PortfoliosTable, err)
	}
	insertSQL := insertPortfolioSQL(driver)
	count := 0
	for _, item := range Portfolios() {
		if _, err := tx.ExecContext(ctx, insertSQL, item.ID, item.ClientName, item.PortfolioValue, item.RelationshipManager, item.Stock); err != nil {
			return count, fmt.Errorf("insert portfolio %d: %w", item.ID, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return count, nil
}
