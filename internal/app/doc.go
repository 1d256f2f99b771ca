// Package app wires the Partial Week Converter together and runs its HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and PWC_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create the conversion and health services
//	4. Set up the chi router, middleware and handlers
//	5. Start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Requests in
// flight get up to Server.ShutdownTimeout to finish, then telemetry is flushed.
//
// # Error Handling
//
// Initialization errors are returned to the caller; the package never calls os.Exit.
package app
