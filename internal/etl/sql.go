package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/BartekS5/gaexport/internal/config"
	"github.com/BartekS5/gaexport/pkg/logger"
	"github.com/BartekS5/gaexport/pkg/models"
)

// SQLServerSink mirrors the run's rows into a SQL Server table using bulk copy.
type SQLServerSink struct {
	DB        *sql.DB
	Schema    string
	TableName string
}

func NewSQLServerSink(db *sql.DB, cfg config.SQLServerMirror) *SQLServerSink {
	return &SQLServerSink{DB: db, Schema: cfg.Schema, TableName: cfg.Table}
}

func (s *SQLServerSink) Name() string  { return "sqlserver" }
func (s *SQLServerSink) Table() string { return s.TableName }

func (s *SQLServerSink) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'",
		s.Schema)
	if err != nil {
		return nil, fmt.Errorf("list tables in schema %s: %w", s.Schema, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLServerSink) CreateTable(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createTableSQL(s.Schema, s.TableName)); err != nil {
		return fmt.Errorf("create table %s: %w", s.qualified(), err)
	}
	return nil
}

func (s *SQLServerSink) Load(ctx context.Context, batch Batch) error {
	txn, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, mssql.CopyIn(s.qualified(), mssql.BulkOptions{}, models.OutputColumns...))
	if err != nil {
		return fmt.Errorf("prepare bulk copy into %s: %w", s.qualified(), err)
	}
	for i, r := range batch.Rows {
		if _, err := stmt.ExecContext(ctx, r.TID, r.ClientID, r.ApplicationID, r.CreatedAt.UTC()); err != nil {
			stmt.Close()
			return fmt.Errorf("bulk copy row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		stmt.Close()
		return fmt.Errorf("flush bulk copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit bulk copy: %w", err)
	}

	n, _ := res.RowsAffected()
	logger.Infof("SQL Server: appended %d rows to %s", n, s.qualified())
	return nil
}

func (s *SQLServerSink) qualified() string {
	return quoteIdent(s.Schema) + "." + quoteIdent(s.TableName)
}

func createTableSQL(schema, table string) string {
	return fmt.Sprintf(`CREATE TABLE %s.%s (
	%s NVARCHAR(256) NOT NULL,
	%s NVARCHAR(256) NOT NULL,
	%s NVARCHAR(256) NOT NULL,
	%s DATETIME2 NOT NULL
)`, quoteIdent(schema), quoteIdent(table),
		quoteIdent(models.ColumnTID), quoteIdent(models.ColumnClientID),
		quoteIdent(models.ColumnApplicationID), quoteIdent(models.ColumnCreatedAt))
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
