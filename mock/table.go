package mock

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/composure"
)

type (
	// Table is an in-memory mock oracle. It is safe for concurrent use.
	Table struct {
		entries map[string]*composure.Response
		mu      sync.RWMutex
	}

	// Entry is one recorded response as stored in a mock file. A missing
	// body is distinct from an empty one.
	Entry struct {
		Body   *string          `json:"body,omitempty"`
		Method composure.Method `json:"method"`
		URL    string           `json:"url"`
		Code   int              `json:"code"`
	}

	mockFile struct {
		Mocks []Entry `json:"mocks"`
	}
)

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*composure.Response)}
}

// Add records a response with a body for method and url, replacing any
// previous one.
func (t *Table) Add(method composure.Method, url string, code int, body string) *Table {
	return t.put(method, url, composure.NewResponse(code, body))
}

// AddNoBody records a response without a body.
func (t *Table) AddNoBody(method composure.Method, url string, code int) *Table {
	return t.put(method, url, composure.NewEmptyResponse(code))
}

func (t *Table) put(method composure.Method, url string, resp *composure.Response) *Table {
	t.mu.Lock()
	t.entries[composure.RequestKey(method, url)] = resp
	t.mu.Unlock()

	return t
}

// Lookup returns a copy of the response recorded for method and url.
func (t *Table) Lookup(method composure.Method, url string) (*composure.Response, bool) {
	t.mu.RLock()
	resp, ok := t.entries[composure.RequestKey(method, url)]
	t.mu.RUnlock()

	if !ok {
		return nil, false
	}

	return resp.Clone(), true
}

// Len returns the number of recorded routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}

// LoadFile reads a JSON mock file of the form
// {"mocks": [{"method": "GET", "url": "...", "code": 200, "body": "..."}]}.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mock: read file: %w", err)
	}

	var f mockFile
	if err = json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("mock: parse file: %w", err)
	}

	t := NewTable()

	for i, e := range f.Mocks {
		if !e.Method.Valid() {
			return nil, fmt.Errorf("mock: entry %d: %w: %q", i, composure.ErrUnsupportedMethod, e.Method)
		}

		if e.Body == nil {
			t.AddNoBody(e.Method, e.URL, e.Code)
		} else {
			t.Add(e.Method, e.URL, e.Code, *e.Body)
		}
	}

	return t, nil
}
