package ekidata2sql

import (
	"fmt"
	"strings"
)

// NOTE: Every foreign key cascades on update and delete. The loader itself only checks
// references for join rows, see loadJoins.

type columnType int

const (
	integerColumn columnType = iota
	floatColumn
	textColumn
)

type tableSchema struct {
	Name       string
	PrimaryKey []string
	Columns    []columnSchema
}

type columnSchema struct {
	Name      string
	Type      columnType
	Length    int // textColumn only
	NotNull   bool
	Comment   string
	ForeignID *foreignIDSchema
}

type foreignIDSchema struct {
	Table  string
	Column string
}

const (
	prefTable    = "pref"
	companyTable = "company"
	lineTable    = "line"
	stationTable = "station"
	joinTable    = "join"
)

// ekidataSchema is in insertion order: every table only references tables before it.
var ekidataSchema = []tableSchema{
	{
		Name:       prefTable,
		PrimaryKey: []string{"pref_cd"},
		Columns: []columnSchema{
			{Name: "pref_cd", Type: integerColumn, NotNull: true, Comment: "都道府県コード"},
			{Name: "pref_name", Type: textColumn, Length: 4, NotNull: true, Comment: "都道府県名"},
		},
	},

	{
		Name:       companyTable,
		PrimaryKey: []string{"company_cd"},
		Columns: []columnSchema{
			{Name: "company_cd", Type: integerColumn, NotNull: true, Comment: "事業者コード"},
			{Name: "rr_cd", Type: integerColumn, NotNull: true, Comment: "鉄道コード"},
			{Name: "company_name", Type: textColumn, Length: 80, NotNull: true, Comment: "事業者名(一般)"},
			{Name: "company_name_k", Type: textColumn, Length: 80, Comment: "事業者名(一般・カナ)"},
			{Name: "company_name_h", Type: textColumn, Length: 80, Comment: "事業者名(正式名称)"},
			{Name: "company_name_r", Type: textColumn, Length: 80, Comment: "事業者名(略称)"},
			{Name: "company_url", Type: textColumn, Length: 256, Comment: "Webサイト"},
			{Name: "company_type", Type: integerColumn, Comment: "事業者区分(0:その他 1:JR 2:大手私鉄 3:準大手私鉄)"},
			{Name: "e_status", Type: integerColumn, Comment: "状態(0:運用中 1:運用前 2:廃止)"},
			{Name: "e_sort", Type: integerColumn, Comment: "並び順"},
		},
	},

	{
		Name:       lineTable,
		PrimaryKey: []string{"line_cd"},
		Columns: []columnSchema{
			{Name: "line_cd", Type: integerColumn, NotNull: true, Comment: "路線コード"},
			{
				Name:      "company_cd",
				Type:      integerColumn,
				NotNull:   true,
				Comment:   "事業者コード",
				ForeignID: &foreignIDSchema{Table: companyTable, Column: "company_cd"},
			},
			{Name: "line_name", Type: textColumn, Length: 80, NotNull: true, Comment: "路線名称(一般)"},
			{Name: "line_name_k", Type: textColumn, Length: 80, Comment: "路線名称(一般・カナ)"},
			{Name: "line_name_h", Type: textColumn, Length: 80, Comment: "路線名称(正式名称)"},
			{Name: "line_color_c", Type: textColumn, Length: 6, Comment: "路線カラー(コード)"},
			{Name: "line_color_t", Type: textColumn, Length: 10, Comment: "路線カラー(名称)"},
			{Name: "line_type", Type: integerColumn, Comment: "路線区分(0:その他 1:新幹線 2:一般 3:地下鉄 4:市電・路面電車 5:モノレール・新交通)"},
			{Name: "lon", Type: floatColumn, Comment: "路線表示時の中央経度"},
			{Name: "lat", Type: floatColumn, Comment: "路線表示時の中央緯度"},
			{Name: "zoom", Type: integerColumn, Comment: "路線表示時のGoogleMap倍率"},
			{Name: "e_status", Type: integerColumn, Comment: "状態(0:運用中 1:運用前 2:廃止)"},
			{Name: "e_sort", Type: integerColumn, Comment: "並び順"},
		},
	},

	{
		Name:       stationTable,
		PrimaryKey: []string{"station_cd"},
		Columns: []columnSchema{
			{Name: "station_cd", Type: integerColumn, NotNull: true, Comment: "駅コード"},
			{Name: "station_g_cd", Type: integerColumn, NotNull: true, Comment: "駅グループコード"},
			{Name: "station_name", Type: textColumn, Length: 80, NotNull: true, Comment: "駅名称"},
			{Name: "station_name_k", Type: textColumn, Length: 80, Comment: "駅名称(カナ)"},
			{Name: "station_name_r", Type: textColumn, Length: 80, Comment: "駅名称(ローマ字)"},
			{
				Name:      "line_cd",
				Type:      integerColumn,
				NotNull:   true,
				Comment:   "路線コード",
				ForeignID: &foreignIDSchema{Table: lineTable, Column: "line_cd"},
			},
			{
				Name:      "pref_cd",
				Type:      integerColumn,
				Comment:   "都道府県コード",
				ForeignID: &foreignIDSchema{Table: prefTable, Column: "pref_cd"},
			},
			{Name: "post", Type: textColumn, Length: 10, Comment: "駅郵便番号(xxx-xxxx)"},
			{Name: "add", Type: textColumn, Length: 300, Comment: "住所"},
			{Name: "lon", Type: floatColumn, Comment: "経度(世界測地系)"},
			{Name: "lat", Type: floatColumn, Comment: "緯度(世界測地系)"},
			{Name: "open_ymd", Type: textColumn, Length: 10, Comment: "開業年月日(YYYY-mm-dd)"},
			{Name: "close_ymd", Type: textColumn, Length: 10, Comment: "廃止年月日(YYYY-mm-dd)"},
			{Name: "e_status", Type: integerColumn, Comment: "状態(0:運用中 1:運用前 2:廃止)"},
			{Name: "e_sort", Type: integerColumn, Comment: "並び順"},
		},
	},

	{
		Name:       joinTable,
		PrimaryKey: []string{"line_cd", "station_cd1", "station_cd2"},
		Columns: []columnSchema{
			{
				Name:      "line_cd",
				Type:      integerColumn,
				NotNull:   true,
				Comment:   "路線コード",
				ForeignID: &foreignIDSchema{Table: lineTable, Column: "line_cd"},
			},
			{
				Name:      "station_cd1",
				Type:      integerColumn,
				NotNull:   true,
				Comment:   "駅コード１",
				ForeignID: &foreignIDSchema{Table: stationTable, Column: "station_cd"},
			},
			{
				Name:      "station_cd2",
				Type:      integerColumn,
				NotNull:   true,
				Comment:   "駅コード２",
				ForeignID: &foreignIDSchema{Table: stationTable, Column: "station_cd"},
			},
		},
	},
}

func lookupTable(name string) *tableSchema {
	for i := range ekidataSchema {
		if ekidataSchema[i].Name == name {
			return &ekidataSchema[i]
		}
	}
	panic("unknown table " + name)
}

func (t *tableSchema) column(name string) (columnSchema, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return columnSchema{}, false
}

// dialect is the part of DDL and DML that differs between destination stores.
type dialect struct {
	Name string
	// TypeName renders a column type, e.g. VARCHAR(80) or TEXT.
	TypeName func(c columnSchema) string
	// Comments controls whether column comments are emitted.
	Comments bool
	// TableOptions is appended after the closing parenthesis of CREATE TABLE.
	TableOptions string
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}

func createTableSQL(d dialect, t tableSchema) string {
	var fragments []string
	for _, c := range t.Columns {
		fragment := quoteIdent(c.Name) + " " + d.TypeName(c)
		if c.NotNull {
			fragment += " NOT NULL"
		}
		if d.Comments && c.Comment != "" {
			fragment += " COMMENT " + quoteString(c.Comment)
		}
		fragments = append(fragments, fragment)
	}

	fragments = append(fragments, fmt.Sprintf("PRIMARY KEY (%s)", quoteIdents(t.PrimaryKey)))

	for _, c := range t.Columns {
		if c.ForeignID == nil {
			continue
		}
		fragments = append(fragments, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE CASCADE ON DELETE CASCADE",
			quoteIdent(c.Name), quoteIdent(c.ForeignID.Table), quoteIdent(c.ForeignID.Column)))
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(fragments, ", "))
	if d.TableOptions != "" {
		query += " " + d.TableOptions
	}
	return query
}

func insertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), quoteIdents(columns), strings.Join(placeholders, ", "))
}

func existsSQL(table, column string) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?) AS found", quoteIdent(table), quoteIdent(column))
}
