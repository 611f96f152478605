// Package handler contains the HTTP request handlers.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, JSON body, auth context)
//  2. Call the service layer
//  3. Write the JSON response (status code, headers, body)
//
// Handlers hold no business rules. Services report failures as
// *apperror.AppError and writeError is the only place those become HTTP
// status codes.
package handler
