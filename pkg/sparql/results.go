package sparql

// Results is the SPARQL 1.1 JSON results document returned for SELECT.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

// Binding is one cell of the results table.
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Column returns the values bound to name, in row order. Rows where name is
// unbound are skipped.
func (r *Results) Column(name string) []string {
	out := make([]string, 0, len(r.Results.Bindings))
	for _, row := range r.Results.Bindings {
		if b, ok := row[name]; ok {
			out = append(out, b.Value)
		}
	}
	return out
}
