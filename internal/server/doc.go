// Package server provides HTTP routing, middleware, and OAuth handling for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first is the outermost wrapper.
// [RequestLogger] and [Recoverer] are the middleware used by the login flow.
//
// The [BasicRouter] implementation registers [http.ServeMux] method patterns such as "GET /callback".
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens
// through an [Exchanger], and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs `portx auth login`, a temporary [Server] binds the configured host and port,
// handles the callback, and shuts down after receiving the token.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
