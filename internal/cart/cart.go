package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the SQL store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStore persists cart lines in the cart_lines table (see the goose
// migrations in internal/stores/database).
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

const lineColumns = `product_id, name, attribute, thumbnail_url, square_thumbnail_url, image_url, price, price_text, quantity`

func (s *SQLStore) UpsertLine(ctx context.Context, productID string, fields DisplayFields) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// A second add of the same product bumps the quantity by exactly one
		// and overwrites the display snapshot.
		query := `
			INSERT INTO cart_lines (` + lineColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT (product_id) DO UPDATE SET
				name = excluded.name,
				attribute = excluded.attribute,
				thumbnail_url = excluded.thumbnail_url,
				square_thumbnail_url = excluded.square_thumbnail_url,
				image_url = excluded.image_url,
				price = excluded.price,
				price_text = excluded.price_text,
				quantity = CASE WHEN cart_lines.quantity >= 2147483647 THEN 2147483647 ELSE cart_lines.quantity + 1 END,
				updated_at = CURRENT_TIMESTAMP
		`
		_, err := tx.ExecContext(ctx, s.rebind(query),
			productID, fields.Name, fields.Attribute, fields.ThumbnailURL,
			fields.SquareThumbnailURL, fields.ImageURL, nullFloat(fields.Price), fields.PriceText)
		if err != nil {
			return fmt.Errorf("failed to upsert cart line: %w", err)
		}
		return nil
	})
	return persistenceFailure("upsert line", err)
}

func (s *SQLStore) AdjustQuantity(ctx context.Context, productID string, delta int32) (int32, error) {
	var quantity int32
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// Read, add and clamp happen in one statement so concurrent adjusts
		// cannot interleave between the read and the write. The sum is taken
		// as BIGINT and clamped to [0, MaxInt32], matching MemoryStore.
		query := `
			UPDATE cart_lines
			SET quantity = CASE
					WHEN CAST(quantity AS BIGINT) + ? < 0 THEN 0
					WHEN CAST(quantity AS BIGINT) + ? > 2147483647 THEN 2147483647
					ELSE quantity + ?
				END,
				updated_at = CURRENT_TIMESTAMP
			WHERE product_id = ?
			RETURNING quantity
		`
		err := tx.QueryRowContext(ctx, s.rebind(query), delta, delta, delta, productID).Scan(&quantity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to adjust cart line quantity: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, persistenceFailure("adjust quantity", err)
	}
	return quantity, nil
}

func (s *SQLStore) DeleteLine(ctx context.Context, productID string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM cart_lines WHERE product_id = ?`), productID)
		if err != nil {
			return fmt.Errorf("failed to delete cart line: %w", err)
		}
		return nil
	})
	return persistenceFailure("delete line", err)
}

func (s *SQLStore) DeleteAllLines(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
			return fmt.Errorf("failed to delete cart lines: %w", err)
		}
		return nil
	})
	return persistenceFailure("delete all lines", err)
}

func (s *SQLStore) FetchLine(ctx context.Context, productID string) (*Line, error) {
	query := `SELECT ` + lineColumns + ` FROM cart_lines WHERE product_id = ?`
	line, err := scanLine(s.db.QueryRowContext(ctx, s.rebind(query), productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceFailure("fetch line", err)
	}
	return &line, nil
}

func (s *SQLStore) FetchAllLines(ctx context.Context) ([]Line, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+lineColumns+` FROM cart_lines ORDER BY id`)
	if err != nil {
		return nil, persistenceFailure("fetch all lines", fmt.Errorf("failed to query cart lines: %w", err))
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, persistenceFailure("fetch all lines", fmt.Errorf("failed to scan cart line: %w", err))
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceFailure("fetch all lines", fmt.Errorf("error iterating cart lines: %w", err))
	}
	return lines, nil
}

func (s *SQLStore) FetchAllProductIDs(ctx context.Context) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT product_id FROM cart_lines`)
	if err != nil {
		return nil, persistenceFailure("fetch product ids", fmt.Errorf("failed to query product ids: %w", err))
	}
	defer rows.Close()

	ids := IDSet{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, persistenceFailure("fetch product ids", fmt.Errorf("failed to scan product id: %w", err))
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceFailure("fetch product ids", fmt.Errorf("error iterating product ids: %w", err))
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(row rowScanner) (Line, error) {
	var (
		line  Line
		price sql.NullFloat64
	)
	err := row.Scan(&line.ProductID, &line.Name, &line.Attribute, &line.ThumbnailURL,
		&line.SquareThumbnailURL, &line.ImageURL, &price, &line.PriceText, &line.Quantity)
	if err != nil {
		return Line{}, err
	}
	if price.Valid {
		v := price.Float64
		line.Price = &v
	}
	return line, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		er := tx.Rollback()
		if er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
