// Package document defines the items flowing through a docpipe run and the
// pull-based sources that produce them.
//
// A Document pairs a stable source identifier with a content provider. The
// engine never mutates a Document; it only reads its content once, when the
// remote resource is created.
//
// Sources are lazy, single-pass iterators:
//
//	src := document.FromSlice(docs)
//	for {
//	    doc, ok, err := src.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    // process doc
//	}
package document
