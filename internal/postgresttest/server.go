// Package postgresttest runs an in-memory stand-in for the PostgREST
// endpoints the gateway talks to. It understands the subset of the protocol
// postgrest-go emits: select, eq/in/is filters, order, limit, single-object
// responses, return=representation, plus foreign key cascades and singleton
// tables. Faults and latency can be injected per table.
package postgresttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"
)

// Row is a stored record, keyed by column name.
type Row map[string]any

// Request is a recorded call, in arrival order.
type Request struct {
	Method        string
	Table         string
	Query         string
	Authorization string
}

type foreignKey struct {
	child  string
	column string
	parent string
}

type hook struct {
	method string
	table  string
	fn     func()
}

type fault struct {
	method  string
	table   string
	status  int
	code    string
	message string
}

// Server is the emulated endpoint. Its REST base URL is URL().
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	tables     map[string][]Row
	keys       []foreignKey
	singletons map[string]bool
	faults     []fault
	hooks      []hook
	delays     map[string]time.Duration
	requests   []Request
	clock      time.Time
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tables:     make(map[string][]Row),
		singletons: make(map[string]bool),
		delays:     make(map[string]time.Duration),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// NewPortfolio starts a server with the portfolio schema's constraints:
// project children cascade and hero/footer tables hold one row at most.
func NewPortfolio(t testing.TB) *Server {
	s := New(t)
	s.ForeignKey("project_images", "project_id", "projects")
	s.ForeignKey("project_videos", "project_id", "projects")
	s.SingleRow("hero_content")
	s.SingleRow("footer_content")
	return s
}

// URL is the REST base URL, the equivalent of <project>/rest/v1.
func (s *Server) URL() string {
	return s.srv.URL + "/rest/v1"
}

// Client returns a postgrest-go client bound to the server.
func (s *Server) Client() *postgrest.Client {
	return postgrest.NewClient(s.URL(), "", map[string]string{
		"apikey":        "test-key",
		"Authorization": "Bearer test-key",
	})
}

// ForeignKey declares child.column -> parent.id with ON DELETE CASCADE.
func (s *Server) ForeignKey(child, column, parent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, foreignKey{child: child, column: column, parent: parent})
}

// SingleRow makes inserts into table fail with a unique violation once it
// holds a row.
func (s *Server) SingleRow(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singletons[table] = true
}

// Seed stores rows as given, filling id and created_at when missing.
// It bypasses constraints.
func (s *Server) Seed(table string, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], s.complete(normalize(r)))
	}
}

// Rows returns a copy of the table contents.
func (s *Server) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// Fail makes the next request matching method and table return an error.
// An empty method matches any method.
func (s *Server) Fail(method, table string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, table: table, status: status, code: code, message: message})
}

// Before runs fn once, ahead of the next request matching method and table.
// fn may call other Server methods.
func (s *Server) Before(method, table string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook{method: method, table: table, fn: fn})
}

// Delay holds every request to table for d before answering.
func (s *Server) Delay(table string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[table] = d
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts calls matching method and table.
func (s *Server) CountRequests(method, table string) int {
	n := 0
	for _, r := range s.Requests() {
		if (method == "" || r.Method == method) && r.Table == table {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	table := path.Base(r.URL.Path)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Table: table, Query: r.URL.RawQuery, Authorization: r.Header.Get("Authorization")})
	delay := s.delays[table]
	f := s.takeFault(r.Method, table)
	h := s.takeHook(r.Method, table)
	s.mu.Unlock()

	if h != nil {
		h.fn()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if f != nil {
		writeError(w, f.status, f.code, f.message, "")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleSelect(w, r, table)
	case http.MethodPost:
		s.handleInsert(w, r, table)
	case http.MethodPatch:
		s.handleUpdate(w, r, table)
	case http.MethodDelete:
		s.handleDelete(w, r, table)
	default:
		writeError(w, http.StatusMethodNotAllowed, "PGRST000", "method not allowed", "")
	}
}

func (s *Server) takeFault(method, table string) *fault {
	for i, f := range s.faults {
		if f.table == table && (f.method == "" || f.method == method) {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
			return &f
		}
	}
	return nil
}

func (s *Server) takeHook(method, table string) *hook {
	for i, h := range s.hooks {
		if h.table == table && (h.method == "" || h.method == method) {
			s.hooks = append(s.hooks[:i], s.hooks[i+1:]...)
			return &h
		}
	}
	return nil
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, table string) {
	q := r.URL.Query()
	filters, err := parseFilters(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST100", err.Error(), "")
		return
	}

	s.mu.Lock()
	var rows []Row
	for _, row := range s.tables[table] {
		if matches(row, filters) {
			rows = append(rows, copyRow(row))
		}
	}
	s.mu.Unlock()

	sortRows(rows, q.Get("order"))
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err == nil && n < len(rows) {
			rows = rows[:n]
		}
	}
	rows = project(rows, q.Get("select"))
	s.respond(w, r, http.StatusOK, rows, true)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, table string) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "invalid JSON body", "")
		return
	}

	var incoming []Row
	switch v := body.(type) {
	case map[string]any:
		incoming = append(incoming, Row(v))
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				writeError(w, http.StatusBadRequest, "PGRST102", "array items must be objects", "")
				return
			}
			incoming = append(incoming, Row(m))
		}
	default:
		writeError(w, http.StatusBadRequest, "PGRST102", "body must be an object or array", "")
		return
	}

	s.mu.Lock()
	if s.singletons[table] && len(s.tables[table])+len(incoming) > 1 {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "23505",
			fmt.Sprintf("duplicate key value violates unique constraint \"%s_singleton\"", table), "")
		return
	}
	for _, row := range incoming {
		if fk, missing := s.missingParent(table, row); missing {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "23503",
				fmt.Sprintf("insert or update on table \"%s\" violates foreign key constraint \"%s_%s_fkey\"", table, table, fk.column), "")
			return
		}
	}
	inserted := make([]Row, 0, len(incoming))
	for _, row := range incoming {
		stored := s.complete(row)
		s.tables[table] = append(s.tables[table], stored)
		inserted = append(inserted, copyRow(stored))
	}
	s.mu.Unlock()

	s.respond(w, r, http.StatusCreated, inserted, wantsRepresentation(r))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, table string) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST100", err.Error(), "")
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "invalid JSON body", "")
		return
	}

	s.mu.Lock()
	var updated []Row
	for _, row := range s.tables[table] {
		if !matches(row, filters) {
			continue
		}
		for k, v := range patch {
			row[k] = v
		}
		updated = append(updated, copyRow(row))
	}
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, updated, wantsRepresentation(r))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST100", err.Error(), "")
		return
	}

	s.mu.Lock()
	deleted := s.deleteWhere(table, func(row Row) bool { return matches(row, filters) })
	s.mu.Unlock()

	s.respond(w, r, http.StatusOK, deleted, wantsRepresentation(r))
}

// deleteWhere removes matching rows and cascades to children. Caller holds mu.
func (s *Server) deleteWhere(table string, match func(Row) bool) []Row {
	var kept, deleted []Row
	for _, row := range s.tables[table] {
		if match(row) {
			deleted = append(deleted, row)
		} else {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept

	for _, fk := range s.keys {
		if fk.parent != table {
			continue
		}
		for _, parent := range deleted {
			id := fmt.Sprint(parent["id"])
			s.deleteWhere(fk.child, func(child Row) bool { return fmt.Sprint(child[fk.column]) == id })
		}
	}
	return deleted
}

// missingParent reports whether row references a parent that does not exist.
// Caller holds mu.
func (s *Server) missingParent(table string, row Row) (foreignKey, bool) {
	for _, fk := range s.keys {
		if fk.child != table {
			continue
		}
		ref := fmt.Sprint(row[fk.column])
		found := false
		for _, parent := range s.tables[fk.parent] {
			if fmt.Sprint(parent["id"]) == ref {
				found = true
				break
			}
		}
		if !found {
			return fk, true
		}
	}
	return foreignKey{}, false
}

// complete fills id and created_at. Caller holds mu.
func (s *Server) complete(r Row) Row {
	row := copyRow(r)
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	if _, ok := row["created_at"]; !ok {
		s.clock = s.clock.Add(time.Millisecond)
		row["created_at"] = s.clock.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return row
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, rows []Row, withBody bool) {
	if rows == nil {
		rows = []Row{}
	}
	if wantsObject(r) {
		if len(rows) != 1 {
			writeError(w, http.StatusNotAcceptable, "PGRST116",
				"JSON object requested, multiple (or no) rows returned",
				fmt.Sprintf("The result contains %d rows", len(rows)))
			return
		}
		writeJSON(w, status, rows[0])
		return
	}
	if !withBody {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, rows)
}

type filter struct {
	column string
	op     string
	values []string
}

func parseFilters(q map[string][]string) ([]filter, error) {
	var out []filter
	for key, vals := range q {
		switch key {
		case "select", "order", "limit", "offset", "on_conflict", "columns":
			continue
		}
		for _, raw := range vals {
			op, arg, ok := strings.Cut(raw, ".")
			if !ok {
				return nil, fmt.Errorf("malformed filter %s=%s", key, raw)
			}
			switch op {
			case "eq", "neq", "is":
				out = append(out, filter{column: key, op: op, values: []string{arg}})
			case "in":
				arg = strings.TrimSuffix(strings.TrimPrefix(arg, "("), ")")
				out = append(out, filter{column: key, op: op, values: splitList(arg)})
			default:
				return nil, fmt.Errorf("unsupported operator %q", op)
			}
		}
	}
	return out, nil
}

// splitList splits an in.(...) argument on commas outside double quotes and
// unquotes the items.
func splitList(arg string) []string {
	var out []string
	var cur strings.Builder
	quoted := false
	for _, r := range arg {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

func matches(row Row, filters []filter) bool {
	for _, f := range filters {
		v, present := row[f.column]
		got := fmt.Sprint(v)
		switch f.op {
		case "eq":
			if !present || v == nil || got != f.values[0] {
				return false
			}
		case "neq":
			if present && v != nil && got == f.values[0] {
				return false
			}
		case "is":
			if f.values[0] == "null" && present && v != nil {
				return false
			}
		case "in":
			hit := false
			for _, want := range f.values {
				if present && v != nil && got == want {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
	}
	return true
}

func sortRows(rows []Row, order string) {
	if order == "" {
		return
	}
	type key struct {
		column string
		desc   bool
	}
	var keys []key
	for _, part := range strings.Split(order, ",") {
		fields := strings.Split(part, ".")
		k := key{column: fields[0]}
		if len(fields) > 1 && fields[1] == "desc" {
			k.desc = true
		}
		keys = append(keys, k)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.column], rows[j][k.column])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func project(rows []Row, sel string) []Row {
	if sel == "" || sel == "*" {
		return rows
	}
	cols := strings.Split(sel, ",")
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		p := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				p[c] = v
			}
		}
		out = append(out, p)
	}
	return out
}

func wantsObject(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		if strings.Contains(v, "vnd.pgrst.object") {
			return true
		}
	}
	return false
}

func wantsRepresentation(r *http.Request) bool {
	for _, v := range r.Header.Values("Prefer") {
		if strings.Contains(v, "return=representation") {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
		"details": details,
		"hint":    nil,
	})
}

// normalize gives seeded values the types a JSON body would have.
func normalize(r Row) Row {
	raw, err := json.Marshal(r)
	if err != nil {
		panic(fmt.Sprintf("postgresttest: seed row is not JSON: %v", err))
	}
	var out Row
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("postgresttest: seed row: %v", err))
	}
	return out
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
