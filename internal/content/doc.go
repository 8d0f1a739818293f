// Package content implements the text capabilities the pipeline consumes:
// undoing the source database's payload compression and extracting plain
// paragraphs from article markup.
package content
