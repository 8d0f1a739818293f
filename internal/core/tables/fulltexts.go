package tables

import "github.com/JonMunkholm/bestcontent/internal/core"

// FulltextChunkSize is the default rows per chunk for fulltexts. Individual
// documents can be large, so chunks are small.
const FulltextChunkSize = 1_000

func init() {
	registerFulltexts()
}

func registerFulltexts() {
	core.Register(core.ShapeDefinition{
		Key:      "fulltexts",
		Label:    "Fulltexts",
		Category: core.CategoryFulltext,
		Layout: core.Layout{
			Columns: []string{
				"ref_id",
				"content_id",
				"fulltext_hex",
			},
			IDColumns: 2,
		},
		DefaultChunkSize: FulltextChunkSize,
		Parallel:         true,
		NewTransformer: func(c core.Collaborators) core.RowTransformer {
			return core.FulltextTransformer{Decompressor: c.Decompressor, Extractor: c.Extractor}
		},
	})
}
