// Package catalog holds the static per-sector question catalog. The catalog
// itself is authored externally; this package only loads and validates it.
package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/visibility-engine/model"
)

// Catalog maps a sector name to its fixed question list.
type Catalog map[string][]model.Question

// Load reads a YAML catalog file of the form:
//
//	supermarkets:
//	  - keyword: drive
//	    text: "Which supermarket has the best drive-through pickup?"
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read file")
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: parse yaml")
	}
	return c, nil
}

// Questions returns the question list for a sector. Unknown sectors and
// sectors with empty lists are errors; individual questions are trusted
// as authored.
func (c Catalog) Questions(sector string) ([]model.Question, error) {
	qs, ok := c[sector]
	if !ok {
		return nil, eris.Errorf("catalog: unknown sector %q", sector)
	}
	if len(qs) == 0 {
		return nil, eris.Errorf("catalog: sector %q has no questions", sector)
	}
	return qs, nil
}

// Sectors lists the sector names present in the catalog.
func (c Catalog) Sectors() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	return names
}
