package models

// SQLType is the SQL-facing type of a dataset column, as presented to
// the query generator.
type SQLType string

const (
	SQLTypeNumeric   SQLType = "NUMERIC"
	SQLTypeTimestamp SQLType = "TIMESTAMP"
	SQLTypeBoolean   SQLType = "BOOLEAN"
	SQLTypeVarchar   SQLType = "VARCHAR"
)

// ColumnSchema is the read-only column description the pipeline consumes.
// Owned by the dataset profiler; immutable per dataset.
type ColumnSchema struct {
	Name     string  `json:"name"`
	SQLType  SQLType `json:"type"`
	Nullable bool    `json:"nullable"`
}

// SemanticType is the profiled semantic type of a column, inferred from
// values rather than declared storage type.
type SemanticType string

const (
	SemanticNumeric     SemanticType = "numeric"
	SemanticDatetime    SemanticType = "datetime"
	SemanticBoolean     SemanticType = "boolean"
	SemanticCategorical SemanticType = "categorical"
	SemanticText        SemanticType = "text"
)

// SQLType maps a profiled semantic type to the SQL type shown to the
// query generator.
func (t SemanticType) SQLType() SQLType {
	switch t {
	case SemanticNumeric:
		return SQLTypeNumeric
	case SemanticDatetime:
		return SQLTypeTimestamp
	case SemanticBoolean:
		return SQLTypeBoolean
	default:
		return SQLTypeVarchar
	}
}

// ColumnProfile holds per-column statistics produced by profiling.
type ColumnProfile struct {
	Name        string       `json:"name"`
	Dtype       SemanticType `json:"dtype"`
	NullCount   int64        `json:"null_count"`
	UniqueCount int64        `json:"unique_count"`
}

// Schema returns the column as the read-only schema entry consumed by
// the generation and validation stages.
func (c ColumnProfile) Schema() ColumnSchema {
	return ColumnSchema{
		Name:     c.Name,
		SQLType:  c.Dtype.SQLType(),
		Nullable: c.NullCount > 0,
	}
}

// DatasetProfile describes an uploaded dataset: identity, size, and
// column statistics. Produced once at upload time and stored with the
// session.
type DatasetProfile struct {
	DatasetID string          `json:"dataset_id"`
	Filename  string          `json:"filename"`
	TotalRows int64           `json:"total_rows"`
	Columns   []ColumnProfile `json:"columns"`
}

// ColumnNames returns the allow-list of column names for validation.
func (p *DatasetProfile) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}
