package database

import (
	"database/sql"
	"fmt"

	"advisory-portal/internal/models"

	_ "github.com/lib/pq"
)

// DB is the legacy PostgreSQL listing store. A few deployments still
// read listings from it; advisory features (scoring, reports, RERA
// verification) require the MySQL store.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the properties table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(36) PRIMARY KEY,
		title TEXT NOT NULL,
		slug VARCHAR(255) UNIQUE,
		image_url TEXT,

		price BIGINT,
		area DECIMAL(10, 2),
		bedrooms INTEGER,
		property_type VARCHAR(30),
		address TEXT,
		developer VARCHAR(255),
		rera_number VARCHAR(64),

		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
	CREATE INDEX IF NOT EXISTS idx_properties_bedrooms ON properties(bedrooms);
	`
	_, err := db.conn.Exec(query)
	return err
}

// GetAllProperties retrieves all properties from the legacy store
func (db *DB) GetAllProperties() ([]models.Property, error) {
	query := `
		SELECT id, title, slug, image_url,
			   price, area, bedrooms, property_type, address, developer, rera_number,
			   status, created_at
		FROM properties
		ORDER BY created_at DESC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.ImageURL,
			&p.Price, &p.Area, &p.Bedrooms, &p.PropertyType, &p.Address, &p.Developer, &p.ReraNumber,
			&p.Status, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}

	return properties, nil
}

// GetPropertyByID retrieves a property by ID from the legacy store
func (db *DB) GetPropertyByID(id string) (*models.Property, error) {
	query := `
		SELECT id, title, slug, image_url,
			   price, area, bedrooms, property_type, address, developer, rera_number,
			   status, created_at
		FROM properties
		WHERE id = $1
	`

	var p models.Property
	err := db.conn.QueryRow(query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.ImageURL,
		&p.Price, &p.Area, &p.Bedrooms, &p.PropertyType, &p.Address, &p.Developer, &p.ReraNumber,
		&p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
