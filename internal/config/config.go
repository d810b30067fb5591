package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sanwatch/rdfmon/internal/parquet"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Unisphere struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// ArrayID is the local symmetrix this collector polls.
	ArrayID            string `yaml:"array_id"`
	Version            string `yaml:"version"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	// Timeout is in seconds. Zero keeps the client default.
	Timeout int `yaml:"timeout"`
}

type Schedule struct {
	BatchSize  int `yaml:"batch_size"`
	MaxWorkers int `yaml:"max_workers"`
	// BatchDelay and Interval are in seconds. A zero delay keeps the default
	// pacing; a negative one disables it.
	BatchDelay int `yaml:"batch_delay"`
	Interval   int `yaml:"interval"`
}

type Local struct {
	Path string `yaml:"path"`
}

type S3 struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type  string `yaml:"type"`
	Local Local  `yaml:"local"`
	S3    S3     `yaml:"s3"`
}

type Reports struct {
	CSV     bool `yaml:"csv"`
	JSON    bool `yaml:"json"`
	Catalog bool `yaml:"catalog"`
}

type Field struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	ConvertedType  string `yaml:"converted_type,omitempty"`
	RepetitionType string `yaml:"repetition_type,omitempty"`
}

// Preserver selects one durable sink. Only the fields of the chosen type
// are read.
type Preserver struct {
	Type string `yaml:"type"`

	// postgres
	ConnectionString string `yaml:"connection_string"`
	Table            string `yaml:"table"`

	// mongo and kafka
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`

	// parquet
	BatchSize int     `yaml:"batch_size"`
	Schema    []Field `yaml:"schema"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Collector struct {
	Name       string      `yaml:"name"`
	Unisphere  Unisphere   `yaml:"unisphere"`
	Schedule   Schedule    `yaml:"schedule"`
	Repository Repository  `yaml:"repository"`
	Reports    Reports     `yaml:"reports"`
	Preservers []Preserver `yaml:"preservers"`
	Server     Server      `yaml:"server"`
}

type RDFMon struct {
	Global    Global    `yaml:"global"`
	Collector Collector `yaml:"collector"`
}

func NewRDFMonFromFile(fpath string) (*RDFMon, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var rdfmon RDFMon
	if err := yaml.Unmarshal(bs, &rdfmon); err != nil {
		return nil, err
	}

	return &rdfmon, nil
}

// NewLogger builds the process logger at the configured level. An empty
// level keeps zap's development default.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// ParquetFields converts config schema fields into a parquet schema.
func ParquetFields(fields []Field) parquet.Schema {
	var s parquet.Schema
	for _, f := range fields {
		s = append(s, parquet.Field{
			Name:           f.Name,
			Type:           f.Type,
			ConvertedType:  f.ConvertedType,
			RepetitionType: f.RepetitionType,
		})
	}
	return s
}

// SchemaToConfigFields is the inverse of ParquetFields, used by the schema
// generate command to emit a config block from a parsed DDL.
func SchemaToConfigFields(s parquet.Schema) []Field {
	var fields []Field
	for _, f := range s {
		fields = append(fields, Field{
			Name:           f.Name,
			Type:           f.Type,
			ConvertedType:  f.ConvertedType,
			RepetitionType: f.RepetitionType,
		})
	}
	return fields
}
