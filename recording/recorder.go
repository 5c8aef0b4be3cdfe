// Package recording stores dispatch activity in SQLite databases for
// post-run inspection.
package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table with the given name, using the fields
	// of sampleEntry as columns.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers a same-type entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns a slice containing names of all tables.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()
}

// NewSQLiteWriter creates a DataRecorder backed by a SQLite database at path.
// An empty path picks a unique name. Buffered entries are flushed when the
// process exits through atexit.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.Init()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewSQLiteWriterWithDB creates a DataRecorder on an existing database
// connection.
func NewSQLiteWriterWithDB(db *sql.DB) *SQLiteWriter {
	w := &SQLiteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// SQLiteWriter is the writer that writes data into a SQLite database.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// Init establishes a connection to the database.
func (w *SQLiteWriter) Init() {
	if w.DB != nil {
		return
	}

	if w.dbName == "" {
		w.dbName = "relay_recording_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func (w *SQLiteWriter) isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (w *SQLiteWriter) checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !w.isAllowedType(field.Type.Kind()) {
			return errors.New("entry is invalid")
		}
	}

	return nil
}

func fieldNames(entry any) []string {
	types := reflect.TypeOf(entry)

	names := make([]string, 0, types.NumField())
	for i := 0; i < types.NumField(); i++ {
		names = append(names, types.Field(i).Name)
	}

	return names
}

// CreateTable creates a table whose columns are the fields of sampleEntry.
// All fields must be flat scalar types.
func (w *SQLiteWriter) CreateTable(tableName string, sampleEntry any) {
	err := w.checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	fields := strings.Join(fieldNames(sampleEntry), ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	w.mustExecute(createTableSQL)

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}
}

// InsertData buffers one entry. Entries are written in batches.
func (w *SQLiteWriter) InsertData(tableName string, entry any) {
	table, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

// ListTables returns the names of all created tables.
func (w *SQLiteWriter) ListTables() []string {
	tables := make([]string, 0, len(w.tables))
	for table := range w.tables {
		tables = append(tables, table)
	}

	return tables
}

// Flush writes all the buffered entries into the database.
func (w *SQLiteWriter) Flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, table := range w.tables {
		if len(table.entries) == 0 {
			continue
		}

		w.prepareStatement(tableName, table.entries[0])

		for _, entry := range table.entries {
			v := []any{}

			values := reflect.ValueOf(entry)
			for i := 0; i < values.NumField(); i++ {
				v = append(v, values.Field(i).Interface())
			}

			_, err := w.statement.Exec(v...)
			if err != nil {
				panic(err)
			}
		}

		table.entries = nil

		w.statement.Close()
		w.statement = nil
	}

	w.entryCount = 0
}

func (w *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (w *SQLiteWriter) prepareStatement(tableName string, entry any) {
	n := fieldNames(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := w.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	w.statement = stmt
}
