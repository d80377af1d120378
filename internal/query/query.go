// Package query is the table query facade shared by the local and remote
// backends: from(table).select().eq().single(), insert() and
// update().eq(). Builders are values; every call returns a modified copy,
// so a partially built query can be reused safely.
package query

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/genzes/internal/models"
)

// Operation is the kind of statement a Request carries.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
)

// Tables known to the local store.
const (
	TableProfiles = "profiles"
	TableMessages = "messages"
)

// Record is one row in its JSON shape.
type Record = map[string]any

// Filter is an equality predicate.
type Filter struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Request is a fully built statement, evaluated once by an Executor.
type Request struct {
	Table     string    `json:"table"`
	Operation Operation `json:"operation"`
	// Columns is the projection of a select; empty means all columns.
	Columns []string `json:"columns,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
	Record  Record   `json:"record,omitempty"`
	Single  bool     `json:"single,omitempty"`
}

// Result is the {data, error} shape. Error reports a failure the backend
// answered with, as opposed to a failed call.
type Result struct {
	Data  []Record         `json:"data"`
	Error *models.APIError `json:"error,omitempty"`
}

// SingleResult is the result of Select.Single.
type SingleResult struct {
	Data  Record           `json:"data"`
	Error *models.APIError `json:"error,omitempty"`
}

// Executor evaluates requests.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Table is the entry point returned by From.
type Table struct {
	exec  Executor
	table string
}

// From starts a query on table.
func From(exec Executor, table string) Table {
	return Table{exec: exec, table: table}
}

// Select starts a select. Columns may be given separately or as one
// comma-separated list; "*" or nothing selects every column.
func (t Table) Select(columns ...string) Select {
	return Select{exec: t.exec, req: Request{Table: t.table, Operation: OpSelect, Columns: parseColumns(columns)}}
}

// Insert stores rec and returns the stored rows.
func (t Table) Insert(ctx context.Context, rec Record) (Result, error) {
	return t.exec.Execute(ctx, Request{Table: t.table, Operation: OpInsert, Record: rec})
}

// Update starts an update that merges rec into every matching row.
func (t Table) Update(rec Record) Update {
	return Update{exec: t.exec, req: Request{Table: t.table, Operation: OpUpdate, Record: rec}}
}

// Select is a select under construction.
type Select struct {
	exec Executor
	req  Request
}

// Eq adds the predicate column = value.
func (s Select) Eq(column string, value any) Select {
	s.req.Filters = withFilter(s.req.Filters, column, value)
	return s
}

// Request returns the statement built so far.
func (s Select) Request() Request { return s.req }

func (s Select) Execute(ctx context.Context) (Result, error) {
	return s.exec.Execute(ctx, s.req)
}

// Single runs the select keeping its filters and returns the first row.
// No rows yields the PGRST116 error code.
func (s Select) Single(ctx context.Context) (SingleResult, error) {
	req := s.req
	req.Single = true

	res, err := s.exec.Execute(ctx, req)
	if err != nil {
		return SingleResult{}, err
	}
	if res.Error != nil {
		return SingleResult{Error: res.Error}, nil
	}
	if len(res.Data) == 0 {
		return SingleResult{Error: &models.APIError{Code: models.CodeNoRows, Message: "no rows returned"}}, nil
	}
	return SingleResult{Data: res.Data[0]}, nil
}

// Update is an update under construction.
type Update struct {
	exec Executor
	req  Request
}

func (u Update) Eq(column string, value any) Update {
	u.req.Filters = withFilter(u.req.Filters, column, value)
	return u
}

func (u Update) Request() Request { return u.req }

func (u Update) Execute(ctx context.Context) (Result, error) {
	return u.exec.Execute(ctx, u.req)
}

// withFilter appends to a fresh slice so sibling builders never share
// backing arrays.
func withFilter(fs []Filter, column string, value any) []Filter {
	out := make([]Filter, len(fs), len(fs)+1)
	copy(out, fs)
	return append(out, Filter{Column: column, Value: value})
}

func parseColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		for _, part := range strings.Split(c, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "*" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}
