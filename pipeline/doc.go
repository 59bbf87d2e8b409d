// Package pipeline is the bounded-concurrency engine that drives documents
// through a configured sequence of remote operations.
//
// For each document admitted from a Source, a processor run uploads the
// content to the remote service, applies the configured stages strictly in
// order, and deletes the remote resource on every exit path. At most
// Concurrency documents are between creation and deletion at any instant.
//
// Per-document failures are isolated: they are converted into DocumentError
// values delivered to the configured error handlers and never abort the
// run. Only an executor-level PipelineFault or explicit cancellation
// prevents normal completion.
//
//	p, err := pipeline.New(svc, pipeline.Config{Concurrency: 4})
//	p.Classify("standard").Redact("pii").
//	    OnError(func(de pipeline.DocumentError) { log.Println(de) }).
//	    OnCompleted(func() { log.Println("done") })
//	err = p.Run(ctx, document.FromSlice(docs))
package pipeline
