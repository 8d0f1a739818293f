package database

import "sort"

// Export names a raw table that can be dumped from the source database.
type Export struct {
	Name  string
	Query string
}

// AbstractsQuery joins each abstract with the title of the same text_ref.
// Columns: ref_id, content_id_primary (abstract), content_id_secondary
// (title), title_hex, abstract_hex.
const AbstractsQuery = `
SELECT
    tc1.text_ref_id AS text_ref_id,
    tc1.id AS tc_id1,
    tc2.id AS tc_id2,
    encode(tc2.content, 'hex') AS title,
    encode(tc1.content, 'hex') AS abstract
FROM
    text_content tc1
JOIN
    text_content tc2
ON
    tc1.text_ref_id = tc2.text_ref_id AND
    tc1.text_type = 'abstract' AND
    tc2.text_type = 'title' AND
    tc1.content IS NOT NULL AND
    tc2.content IS NOT NULL`

// FulltextsQuery selects every non-empty fulltext.
// Columns: ref_id, content_id, fulltext_hex.
const FulltextsQuery = `
SELECT
    tc.text_ref_id AS text_ref_id,
    tc.id AS tc_id,
    encode(tc.content, 'hex') AS fulltext
FROM
    text_content tc
WHERE
    tc.text_type = 'fulltext' AND
    tc.content IS NOT NULL`

// PMIDQuery maps PubMed ids to text_ref ids.
// Columns: pmid, ref_id.
const PMIDQuery = `
SELECT
    pmid, id
FROM
    text_ref
WHERE
    pmid IS NOT NULL`

var exports = map[string]Export{
	"abstracts": {Name: "abstracts", Query: AbstractsQuery},
	"fulltexts": {Name: "fulltexts", Query: FulltextsQuery},
	"pmids":     {Name: "pmids", Query: PMIDQuery},
}

// LookupExport returns the export registered under name.
func LookupExport(name string) (Export, bool) {
	e, ok := exports[name]
	return e, ok
}

// ExportNames returns the names of all exports, sorted.
func ExportNames() []string {
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
