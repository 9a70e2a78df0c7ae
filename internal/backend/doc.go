// Package backend is the HTTP client for the remote knowledge chat API.
//
// Three endpoints are used:
//
//   - POST /chat           {message, agent?} -> {response}
//   - POST /team_chat      {message}         -> {responses: {team}, sources: [{agent, sources}]}
//   - POST /chat_agent?id=N {message}        -> {response}
//
// Any non-2xx reply becomes a *StatusError without reading the body. A 2xx
// reply missing its expected top-level field, or not decodable as JSON,
// becomes ErrMalformed. The base origin comes from configuration.
package backend
