package repos

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Roles every installation starts with. Registration assigns "mixto".
var seedRoles = []string{"admin", "vendedor", "comprador", "mixto"}

// OpenDB connects to sqlite or mysql, creates missing tables and seeds roles.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	var schema []string
	switch driver {
	case "sqlite":
		schema = sqliteSchema
	case "mysql":
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// every new :memory: connection is a fresh empty database
	if driver == "sqlite" && (strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")) {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	if err := seedRolesIfMissing(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS category(
  category_id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_name VARCHAR(100) NOT NULL,
  category_description VARCHAR(255),
  image_category VARCHAR(255)
)`,
	`CREATE INDEX IF NOT EXISTS idx_category_name ON category(category_name)`,
	`CREATE TABLE IF NOT EXISTS licence(
  licence_id INTEGER PRIMARY KEY AUTOINCREMENT,
  licence_name VARCHAR(45) NOT NULL,
  licence_description VARCHAR(255) NOT NULL,
  licence_image VARCHAR(255)
)`,
	`CREATE INDEX IF NOT EXISTS idx_licence_name ON licence(licence_name)`,
	`CREATE TABLE IF NOT EXISTS product(
  product_id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_name VARCHAR(60) NOT NULL,
  product_description VARCHAR(255) NOT NULL,
  price DECIMAL(10,2) NOT NULL,
  stock INTEGER NOT NULL,
  discount INTEGER,
  sku VARCHAR(30) NOT NULL UNIQUE,
  dues INTEGER,
  created_by INTEGER NOT NULL DEFAULT 1,
  image_front VARCHAR(200) NOT NULL DEFAULT '',
  image_back VARCHAR(200) NOT NULL DEFAULT '',
  additional_images TEXT,
  create_time DATETIME DEFAULT CURRENT_TIMESTAMP,
  licence_id INTEGER NOT NULL REFERENCES licence(licence_id),
  category_id INTEGER NOT NULL REFERENCES category(category_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_product_licence  ON product(licence_id)`,
	`CREATE INDEX IF NOT EXISTS idx_product_category ON product(category_id)`,
	`CREATE TABLE IF NOT EXISTS roles(
  role_id INTEGER PRIMARY KEY AUTOINCREMENT,
  role_name VARCHAR(60) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users(
  user_id INTEGER PRIMARY KEY AUTOINCREMENT,
  name VARCHAR(16) NOT NULL,
  lastname VARCHAR(80) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  create_time DATETIME DEFAULT CURRENT_TIMESTAMP,
  role_id INTEGER
)`,
	`CREATE TABLE IF NOT EXISTS sessions(
  id VARCHAR(64) PRIMARY KEY,
  user_id INTEGER REFERENCES users(user_id) ON DELETE CASCADE,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_seen DATETIME
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS category(
  category_id INT AUTO_INCREMENT PRIMARY KEY,
  category_name VARCHAR(100) NOT NULL,
  category_description VARCHAR(255) NULL,
  image_category VARCHAR(255) NULL,
  INDEX idx_category_name (category_name)
)`,
	`CREATE TABLE IF NOT EXISTS licence(
  licence_id INT AUTO_INCREMENT PRIMARY KEY,
  licence_name VARCHAR(45) NOT NULL,
  licence_description VARCHAR(255) NOT NULL,
  licence_image VARCHAR(255) NULL,
  INDEX idx_licence_name (licence_name)
)`,
	`CREATE TABLE IF NOT EXISTS product(
  product_id INT AUTO_INCREMENT PRIMARY KEY,
  product_name VARCHAR(60) NOT NULL,
  product_description VARCHAR(255) NOT NULL,
  price DECIMAL(10,2) NOT NULL,
  stock INT NOT NULL,
  discount INT NULL,
  sku VARCHAR(30) NOT NULL UNIQUE,
  dues INT NULL,
  created_by INT NOT NULL DEFAULT 1,
  image_front VARCHAR(200) NOT NULL DEFAULT '',
  image_back VARCHAR(200) NOT NULL DEFAULT '',
  additional_images TEXT NULL,
  create_time DATETIME NULL DEFAULT CURRENT_TIMESTAMP,
  licence_id INT NOT NULL,
  category_id INT NOT NULL,
  CONSTRAINT fk_product_licence FOREIGN KEY (licence_id) REFERENCES licence(licence_id),
  CONSTRAINT fk_product_category FOREIGN KEY (category_id) REFERENCES category(category_id)
)`,
	`CREATE TABLE IF NOT EXISTS roles(
  role_id INT AUTO_INCREMENT PRIMARY KEY,
  role_name VARCHAR(60) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users(
  user_id INT AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(16) NOT NULL,
  lastname VARCHAR(80) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  create_time DATETIME NULL DEFAULT CURRENT_TIMESTAMP,
  role_id INT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions(
  id VARCHAR(64) PRIMARY KEY,
  user_id INT NULL,
  created_at DATETIME NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen DATETIME NULL,
  INDEX idx_sessions_user (user_id),
  CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
)`,
}

func seedRolesIfMissing(ctx context.Context, db *sqlx.DB) error {
	for _, name := range seedRoles {
		var n int
		if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM roles WHERE role_name = ?`, name); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO roles(role_name) VALUES(?)`, name); err != nil {
			return err
		}
	}
	return nil
}

// likeContains builds a case-insensitive "contains" pattern for
// `LOWER(col) LIKE ? ESCAPE '!'`.
func likeContains(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
