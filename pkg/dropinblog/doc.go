// Package dropinblog is a client for the DropInBlog REST API.
//
// # Overview
//
// The client covers the endpoints the workflow nodes need: blog and status
// listings, post creation, retrieval and search, and webhook registration.
// Responses are passed through as raw JSON; the client does not model posts.
//
// # Configuration Example
//
//	api {
//	  base_url   = "https://api.dropinblog.com"
//	  timeout    = "30s"
//	  tls_verify = true
//	}
//
//	oauth {
//	  client_id     = env("DROPINBLOG_CLIENT_ID")
//	  client_secret = env("DROPINBLOG_CLIENT_SECRET")
//	  redirect_url  = "http://localhost:8000/oauth/callback"
//	}
//
// # API Endpoints Used
//
//   - GET    /v2/automations/blogs
//   - GET    /v2/automations/statuses
//   - POST   /v2/blog/:blogId/posts
//   - GET    /v2/automations/:blogId/posts/:identifier
//   - GET    /v2/automations/:blogId/posts/search
//   - POST   /v2/blog/:blogId/webhooks
//   - DELETE /v2/blog/:blogId/webhooks/:hookId
//   - POST   /oauth/token
//
// # Authentication
//
// Requests carry an OAuth2 bearer token. Tokens come from the
// authorization-code flow (client credentials in the request body, no
// scope) and are refreshed and persisted through a TokenStore.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError. Token failures are returned
// as *CredentialError. Nothing is retried.
package dropinblog
