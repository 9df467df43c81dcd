// Package http provides HTTP handlers and middleware for the workplace
// booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     The token is returned in the body, the `X-Session-Token` header, and a
//     `session_token` cookie. POST /sessions/refresh rotates the current
//     token, DELETE /sessions/current revokes it, and DELETE /sessions/{token}
//     lets an administrator revoke any token.
//   - GET /users, POST /users, GET/PUT/DELETE /users/{id}, and
//     PUT /users/{id}/password: account management exchanging the `userDTO`
//     payload defined in user_handler.go. Mutations require admin privileges;
//     password changes are allowed for the account owner.
//   - GET /rooms, POST /rooms, GET/PUT/DELETE /rooms/{id}: room catalog
//     endpoints exchanging the `roomDTO` payload defined in room_handler.go.
//     Listing accepts min_capacity and equipment query parameters to narrow
//     the catalog to eligible rooms; mutations require admin privileges.
//   - GET /bookings, POST /bookings, GET/PUT/DELETE /bookings/{id}: booking
//     management exchanging the `bookingDTO` payload defined in
//     booking_handler.go. Listing accepts room_id, owner_id, from, and to
//     query parameters.
//   - POST /bookings/recurring/preview: resolves a recurring request against
//     current bookings without persisting anything, reporting per-instance
//     availability and alternate rooms for the conflicting dates.
//     POST /bookings/recurring commits the previewed series atomically, and
//     POST /bookings/recurring/ics renders it as a text/calendar document.
//   - GET /supplies, POST /supplies, PUT/DELETE /supplies/{id}: office supply
//     catalog endpoints. GET /supply-requests and POST /supply-requests manage
//     the request workflow, and POST /supply-requests/{id}/decision records an
//     administrator's approval or rejection.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
