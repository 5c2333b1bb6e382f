package ledger

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Param is a single query parameter. Order is preserved so rendered commands are stable.
type Param struct {
	Key   string
	Value string
}

// Request describes one call against the ledger API, independent of transport.
type Request struct {
	Body   any
	Method string
	Path   string
	Params []Param
}

// URL resolves the request against baseURL.
func (r Request) URL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + r.Path
	if len(r.Params) == 0 {
		return u
	}

	var q strings.Builder
	for i, p := range r.Params {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p.Key))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(p.Value))
	}
	return u + "?" + q.String()
}

// EncodedBody returns the compact JSON body, or nil when the request has none.
func (r Request) EncodedBody() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s body: %w", r.Method, r.Path, err)
	}
	return b, nil
}

// Curl renders the request as an equivalent, copy-pasteable curl command.
func (r Request) Curl(baseURL string) string {
	parts := []string{"curl", "-X", strings.ToUpper(r.Method)}
	if len(r.Params) > 0 {
		parts = append(parts, "--get")
		for _, p := range r.Params {
			parts = append(parts, "--data-urlencode", p.Key+"="+p.Value)
		}
	}

	if body, err := r.EncodedBody(); err == nil && body != nil {
		parts = append(parts, "-H", "Content-Type: application/json", "-d", string(body))
	}
	parts = append(parts, strings.TrimRight(baseURL, "/")+r.Path)

	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = shellQuote(p)
	}
	return strings.Join(quoted, " ")
}

var shellSafe = regexp.MustCompile(`^[\w@%+=:,./-]+$`)

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// TaxonomyRequest fetches the full group/category tree.
func TaxonomyRequest() Request {
	return Request{Method: "GET", Path: "/api/taxonomy"}
}

// ListRequest fetches one page of transactions.
func ListRequest(q ListQuery) Request {
	return Request{
		Method: "GET",
		Path:   "/api/transactions",
		Params: q.params(),
	}
}

// AssignCategoryRequest replaces a transaction's category assignment.
func AssignCategoryRequest(txnID int64, categoryID int) Request {
	return Request{
		Method: "PATCH",
		Path:   fmt.Sprintf("/api/transactions/%d/category", txnID),
		Body:   assignBody{CategoryID: categoryID},
	}
}
