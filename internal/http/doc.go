// Package http provides HTTP handlers and middleware for the room
// reservation API.
//
// The router exposes the following endpoints:
//   - POST /auth/register: self-service account creation. Body:
//     {"email","display_name","password"}. Rate limited per client.
//   - POST /auth/login: issues a bearer token. Body: {"email","password"}.
//     Response: {"token","expires_at","user"}. Rate limited per client.
//   - GET/POST /reservations, GET/PUT/DELETE /reservations/{id}: booking
//     endpoints exchanging the `reservationDTO` payload defined in
//     reservation_handler.go. Administrators may set on_behalf_of_user_id
//     when creating a booking for another user.
//   - GET/POST /rooms, GET/PUT/DELETE /rooms/{id}: room catalog endpoints
//     exchanging the `roomDTO` payload defined in room_handler.go. Reading
//     is open to any authenticated principal while mutations require
//     administrator privileges. GET /rooms/{id}/reservations lists the
//     bookings held against one room.
//   - GET/POST /users, GET/PUT/DELETE /users/{id}: administrator controlled
//     account management endpoints exchanging the `userDTO` payload defined
//     in user_handler.go.
//   - GET /notifications, POST /notifications/{userId},
//     PUT /notifications/{id}/read: per-user notification endpoints defined
//     in notification_handler.go.
//
// All routes except /auth/* require a bearer token minted at login.
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
