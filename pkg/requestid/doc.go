// Package requestid carries correlation identifiers through a context.
//
// A request id ties together the log records and outgoing API calls made on
// behalf of one user action. The CLI tags each command with an id; the API
// client sends it in the X-Request-ID header and the logger picks it up via
// LoggerExtractor.
//
//	ctx, id := requestid.Ensure(ctx)
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	log.InfoContext(ctx, "working") // carries request_id=<id>
//
// Ids supplied by callers are only kept when Valid; anything else is replaced
// by a fresh UUID.
package requestid
