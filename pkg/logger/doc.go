// Package logger builds the *slog.Logger used across moviekit.
//
// New assembles a JSON or text handler from functional options and wraps it
// with a handler that copies values out of context.Context into
// every record (request ids, the environment, the signed-in user).
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Parse(cfg.Env), "moviectl"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "favorite synced",
//	    logger.Component("session"),
//	    logger.MovieID(id),
//	)
//
// Attribute helpers in attr.go keep key names consistent. Helpers taking an
// error or an optional id return an empty slog.Attr for nil input, which slog
// drops, so call sites need no nil checks.
package logger
