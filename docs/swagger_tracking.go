package docs

// @title           Fleet Tracking Engine API
// @version         1.0
// @description     Tracking engine ingests driver GPS samples, maintains live per-driver motion aggregates, completes route waypoints, raises geofence events, automates job status transitions and recomputes ETAs. Realtime updates are delivered over WebSocket topics.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3002
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
