// Package logger provides structured logging for docpipe on top of zerolog.
//
// Components obtain a tagged logger and attach fields per message:
//
//	log := logger.NewDefault("docpipe").WithComponent("executor")
//	log.Info("document admitted", logger.Fields("source_id", doc.SourceID))
package logger
