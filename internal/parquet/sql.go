package parquet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// The parser speaks the MySQL dialect; the IF NOT EXISTS clause used by the
// bootstrap DDL is stripped before parsing.
var ifNotExistsRe = regexp.MustCompile(`(?i)\bIF\s+NOT\s+EXISTS\b`)

// ParseCreateTable maps a CREATE TABLE statement to a parquet schema, one
// field per column in declaration order.
func ParseCreateTable(stmt string) (Schema, error) {
	parsed, err := sqlparser.Parse(ifNotExistsRe.ReplaceAllString(stmt, ""))
	if err != nil {
		return nil, err
	}

	ddl, ok := parsed.(*sqlparser.DDL)
	if !ok || ddl.Action != sqlparser.CreateStr || ddl.TableSpec == nil {
		return nil, fmt.Errorf("statement is not a create table")
	}

	var schema Schema
	for _, col := range ddl.TableSpec.Columns {
		f, err := SQLParserColumnToField(col)
		if err != nil {
			return nil, err
		}
		schema = append(schema, f)
	}
	return schema, nil
}

// SQLParserColumnToField maps one parsed column definition to a parquet
// field. Nullable columns become OPTIONAL.
func SQLParserColumnToField(col *sqlparser.ColumnDefinition) (Field, error) {
	f := Field{
		Name: col.Name.String(),
	}

	switch strings.ToLower(col.Type.Type) {
	case "smallint", "int", "integer", "bigint":
		f.Type = "INT64"
	case "varchar", "char", "character", "text":
		f.Type = "BYTE_ARRAY"
		f.ConvertedType = "UTF8"
	case "timestamp", "datetime":
		f.Type = "INT64"
		f.ConvertedType = "TIMESTAMP_MICROS"
	case "date":
		f.Type = "INT32"
		f.ConvertedType = "DATE"
	case "float", "double", "real", "numeric", "decimal":
		f.Type = "DOUBLE"
	case "bool", "boolean":
		f.Type = "BOOLEAN"
	default:
		return Field{}, fmt.Errorf("unsupported data type: %q", col.Type.Type)
	}

	if !col.Type.NotNull {
		f.RepetitionType = "OPTIONAL"
	}

	return f, nil
}
