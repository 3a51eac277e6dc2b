// Package environment names the deployment environment the client runs in
// and carries it through context.Context and structured logs.
//
// Parse accepts the usual short aliases ("dev", "stage", "prod") so APP_ENV
// values can be passed straight from configuration:
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	ctx = environment.WithContext(ctx, env)
//
//	if environment.IsProduction(ctx) {
//	    // production-only behaviour
//	}
//
// LoggerExtractor plugs into logger.WithContextExtractors so every record
// logged with that context carries an "env" attribute.
package environment
