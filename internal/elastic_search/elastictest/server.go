// Package elastictest serves a small in-memory subset of the Elasticsearch
// REST API: index management, document get/index, bulk and term searches.
package elastictest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/olivere/elastic/v7"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	indices map[string]bool
	docs    map[string]map[string]json.RawMessage
	order   map[string][]string
}

func NewServer(t *testing.T) *Server {
	s := &Server{
		indices: make(map[string]bool),
		docs:    make(map[string]map[string]json.RawMessage),
		order:   make(map[string][]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

func (s *Server) Client(t *testing.T) *elastic.Client {
	client, err := elastic.NewClient(
		elastic.SetURL(s.URL),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		t.Fatalf("elastic client: %v", err)
	}
	return client
}

func (s *Server) HasIndex(index string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.indices[index]
}

func (s *Server) Document(index, id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[index][id]
	return doc, ok
}

func (s *Server) Count(index string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.docs[index])
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	body, _ := io.ReadAll(r.Body)

	switch {
	case len(parts) == 1 && parts[0] == "_bulk":
		s.bulk(w, body)
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !s.indices[parts[0]] {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		s.indices[parts[0]] = true
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true, "shards_acknowledged": true, "index": parts[0]})
	case len(parts) == 1 && r.Method == http.MethodDelete:
		delete(s.indices, parts[0])
		delete(s.docs, parts[0])
		delete(s.order, parts[0])
		writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
	case len(parts) == 2 && parts[1] == "_search":
		s.search(w, parts[0], body)
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodGet:
		doc, ok := s.docs[parts[0]][parts[2]]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"_index": parts[0], "_id": parts[2], "found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"_index": parts[0], "_id": parts[2], "found": true, "_source": doc})
	case len(parts) == 3 && parts[1] == "_doc":
		s.store(parts[0], parts[2], body)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"_index": parts[0], "_id": parts[2], "_version": 1, "result": "created"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": fmt.Sprintf("unsupported %s %s", r.Method, r.URL.Path)})
	}
}

func (s *Server) store(index, id string, doc []byte) {
	if _, ok := s.docs[index]; !ok {
		s.docs[index] = make(map[string]json.RawMessage)
	}
	if _, exists := s.docs[index][id]; !exists {
		s.order[index] = append(s.order[index], id)
	}
	s.docs[index][id] = append(json.RawMessage{}, doc...)
}

func (s *Server) bulk(w http.ResponseWriter, body []byte) {
	items := make([]map[string]interface{}, 0)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		var action map[string]struct {
			Index string `json:"_index"`
			Id    string `json:"_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &action); err != nil {
			continue
		}
		meta, ok := action["index"]
		if !ok || !scanner.Scan() {
			continue
		}
		s.store(meta.Index, meta.Id, scanner.Bytes())
		items = append(items, map[string]interface{}{
			"index": map[string]interface{}{"_index": meta.Index, "_id": meta.Id, "status": 201, "result": "created"},
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"took": 1, "errors": false, "items": items})
}

// search applies the term clauses of a bool query to top level document fields.
func (s *Server) search(w http.ResponseWriter, index string, body []byte) {
	var request struct {
		Query struct {
			Bool struct {
				Must json.RawMessage `json:"must"`
			} `json:"bool"`
		} `json:"query"`
	}
	_ = json.Unmarshal(body, &request)

	terms := make(map[string]string)
	for _, clause := range clauses(request.Query.Bool.Must) {
		for field, value := range clause["term"] {
			terms[field] = fmt.Sprint(value)
		}
	}

	hits := make([]map[string]interface{}, 0)
	for _, id := range s.order[index] {
		doc := s.docs[index][id]
		var fields map[string]interface{}
		if err := json.Unmarshal(doc, &fields); err != nil {
			continue
		}
		match := true
		for field, value := range terms {
			if fmt.Sprint(fields[field]) != value {
				match = false
				break
			}
		}
		if match {
			hits = append(hits, map[string]interface{}{"_index": index, "_id": id, "_source": doc})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"took": 1,
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(hits), "relation": "eq"},
			"hits":  hits,
		},
	})
}

func clauses(raw json.RawMessage) []map[string]map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var many []map[string]map[string]interface{}
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var one map[string]map[string]interface{}
	if err := json.Unmarshal(raw, &one); err == nil {
		return []map[string]map[string]interface{}{one}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
