package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/clientes-service/internal/model"
)

// ErrNotFound is returned when an operation targets a customer id that does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrDuplicateEmail is returned when a write would store an email that another customer already
// uses.
var ErrDuplicateEmail = errors.New("email already registered")

// mysqlDuplicateEntry is the MySQL server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// Store is the MySQL backed customer repository. It is safe for concurrent use; consistency of
// concurrent writes is left to the database.
type Store struct {
	db *sqlx.DB

	// insert is a prepared statement for creating a customer on the database.
	insert *sqlx.NamedStmt

	// selectAll is a prepared statement for listing all customers in insertion order.
	selectAll *sqlx.Stmt

	// selectWhereId is a prepared statement for selecting the customer with a given id.
	selectWhereId *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting the customer with a given id.
	deleteWhereId *sqlx.Stmt
}

// DSN builds the MySQL data source name for the given connection parameters.
func DSN(host, user, password, name string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// CreateDatabase opens a connection pool for the data source name and checks that the database
// answers.
func CreateDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return sqlDB, nil
}

// New wraps the specified sql database with sqlx and prepares all statements. The database
// argument can be a real database for production use or a mock database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	var err error
	s := &Store{db: sqlx.NewDb(sqlDB, "mysql")}

	// Prepared statements offer a significant speed increase if executed many times.
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO clientes (nome, email, telefone)
		VALUES (:nome, :email, :telefone)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.selectAll, err = s.db.Preparex(`
		SELECT * FROM clientes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select all: %w", err)
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT * FROM clientes WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select by id: %w", err)
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM clientes WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete by id: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements and the underlying database handle.
func (s *Store) Close() error {
	return errors.Join(
		s.insert.Close(),
		s.selectAll.Close(),
		s.selectWhereId.Close(),
		s.deleteWhereId.Close(),
		s.db.Close(),
	)
}

// List returns all customers in the order they were created. The result is never nil.
func (s *Store) List(ctx context.Context) ([]model.Customer, error) {
	customers := []model.Customer{}
	if err := s.selectAll.SelectContext(ctx, &customers); err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	return customers, nil
}

// Get returns the customer with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (model.Customer, error) {
	var customer model.Customer
	err := s.selectWhereId.GetContext(ctx, &customer, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, ErrNotFound
	}
	if err != nil {
		return model.Customer{}, fmt.Errorf("select customer %d: %w", id, err)
	}
	return customer, nil
}

// Create inserts the customer and returns it with the id assigned by the database. The id of the
// argument is ignored.
func (s *Store) Create(ctx context.Context, customer model.Customer) (model.Customer, error) {
	result, err := s.insert.ExecContext(ctx, &customer)
	if err != nil {
		return model.Customer{}, classify(err, "insert customer")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	customer.Id = id
	return customer, nil
}

// Update changes the submitted values (and only those) of the customer with the given id and
// returns the new version of the customer. The read and the write share one transaction.
func (s *Store) Update(ctx context.Context, id int64, update model.CustomerUpdate) (model.Customer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Customer{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var customer model.Customer
	err = tx.GetContext(ctx, &customer, `
		SELECT * FROM clientes WHERE id = ? FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, ErrNotFound
	}
	if err != nil {
		return model.Customer{}, fmt.Errorf("select customer %d: %w", id, err)
	}

	var args []interface{}
	var columns []string
	if update.Nome != nil {
		args = append(args, *update.Nome)
		columns = append(columns, "nome = ?")
	}
	if update.Email != nil {
		args = append(args, *update.Email)
		columns = append(columns, "email = ?")
	}
	if update.Telefone != nil {
		args = append(args, *update.Telefone)
		columns = append(columns, "telefone = ?")
	}

	if len(columns) > 0 {
		args = append(args, id)
		query := "UPDATE clientes SET " + strings.Join(columns, ", ") + " WHERE id = ?"
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return model.Customer{}, classify(err, "update customer")
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Customer{}, classify(err, "commit update")
	}
	update.Apply(&customer)
	return customer, nil
}

// Delete removes the customer with the given id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every customer. It exists for test isolation and operational cleanup only.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clientes"); err != nil {
		return fmt.Errorf("clear customers: %w", err)
	}
	return nil
}

// classify turns a MySQL unique key violation into ErrDuplicateEmail. The email column carries
// the only unique key besides the auto increment id. Other errors are wrapped.
func classify(err error, op string) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}
