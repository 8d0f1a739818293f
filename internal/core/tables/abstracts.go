package tables

import "github.com/JonMunkholm/bestcontent/internal/core"

// AbstractChunkSize is the default rows per chunk for abstracts. Rows are
// small, so chunks are large.
const AbstractChunkSize = 1_000_000

func init() {
	registerAbstracts()
}

func registerAbstracts() {
	core.Register(core.ShapeDefinition{
		Key:      "abstracts",
		Label:    "Abstracts with titles",
		Category: core.CategoryAbstract,
		Layout: core.Layout{
			Columns: []string{
				"ref_id",
				"content_id_primary",
				"content_id_secondary",
				"title_hex",
				"abstract_hex",
			},
			IDColumns: 3,
		},
		DefaultChunkSize: AbstractChunkSize,
		Parallel:         false,
		NewTransformer: func(c core.Collaborators) core.RowTransformer {
			return core.AbstractTransformer{Decompressor: c.Decompressor}
		},
	})
}
