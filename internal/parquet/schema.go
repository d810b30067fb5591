package parquet

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanwatch/rdfmon/internal"
)

type Field struct {
	Name           string
	Type           string
	ConvertedType  string
	RepetitionType string
}

type Schema []Field

// StatusSchema is the parquet layout of replication status records. Columns
// are ordered identically to the relational rdf_status table so rows convert
// positionally.
func StatusSchema() Schema {
	return Schema{
		{Name: "collection_time", Type: "INT64", ConvertedType: "TIMESTAMP_MICROS"},
		{Name: "symmetrix_id", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "storage_group", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "rdf_group_number", Type: "INT64"},
		{Name: "rdf_state", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "rdf_mode", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "rdf_status", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "volume_config", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "ra_group", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "ra_capacity", Type: "DOUBLE"},
		{Name: "consistency_state", Type: "BYTE_ARRAY", ConvertedType: "UTF8"},
		{Name: "last_sync_time", Type: "INT64", ConvertedType: "TIMESTAMP_MICROS", RepetitionType: "OPTIONAL"},
		{Name: "is_protected", Type: "BOOLEAN"},
		{Name: "is_consistent", Type: "BOOLEAN"},
	}
}

func (s Schema) ToGoParquetSchema() []string {
	schema := make([]string, len(s))
	for i, field := range s {
		parts := []string{
			fmt.Sprintf("name=%s", field.Name),
			fmt.Sprintf("type=%s", field.Type),
		}
		if field.ConvertedType != "" {
			parts = append(parts, fmt.Sprintf("convertedtype=%s", field.ConvertedType))
		}
		if field.RepetitionType != "" {
			parts = append(parts, fmt.Sprintf("repetitiontype=%s", field.RepetitionType))
		}
		schema[i] = strings.Join(parts, ", ")
	}

	return schema
}

func (s Schema) RecordToParquetRow(r *internal.Record) ([]any, error) {
	if len(s) != r.Len() {
		return nil, fmt.Errorf(
			"schema and record fields mismatch: schema has %d fields, record has %d fields",
			len(s),
			r.Len(),
		)
	}

	row := make([]any, len(s))
	values := r.Values()

	for i, field := range s {
		v, err := field.parquetValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		row[i] = v
	}

	return row, nil
}

// parquetValue converts a record value to the physical type the go-parquet
// writer expects for the field.
func (f Field) parquetValue(v any) (any, error) {
	if v == nil {
		if f.RepetitionType == "OPTIONAL" {
			return nil, nil
		}
		return nil, fmt.Errorf("null value for required field")
	}

	switch f.ConvertedType {
	case "TIMESTAMP_MICROS":
		switch t := v.(type) {
		case time.Time:
			return t.UnixMicro(), nil
		case *time.Time:
			if t == nil {
				if f.RepetitionType == "OPTIONAL" {
					return nil, nil
				}
				return nil, fmt.Errorf("null value for required field")
			}
			return t.UnixMicro(), nil
		}
		return nil, fmt.Errorf("cannot encode %T as %s", v, f.ConvertedType)
	}

	switch f.Type {
	case "INT64":
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
	case "INT32":
		switch n := v.(type) {
		case int:
			return int32(n), nil
		case int32:
			return n, nil
		}
	case "DOUBLE":
		switch n := v.(type) {
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case "BOOLEAN":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "BYTE_ARRAY":
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	return nil, fmt.Errorf("cannot encode %T as %s", v, f.Type)
}
