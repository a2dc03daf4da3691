// Package errs provides standardized error types for the fulfillment service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for common scenarios:
//   - ValueIsRequiredError: for when a required value is missing
//   - ValueIsInvalidError: for when a value is invalid
//   - ObjectNotFoundError: for when an object cannot be found
//   - ConflictError: for operations that contradict the current aggregate state
//   - ForbiddenError: for callers that are not a party to the delivery
//   - UpstreamError: for courier/geocoder transport and non-2xx failures
//   - QuotationExpiredError: for courier quotations that lapsed before placement
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g. ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method resolving to the sentinel, so errors.Is classification
//     works across layer boundaries
//
// The HTTP layer maps the sentinels onto status codes in one place; nothing
// outside this package needs to know the concrete struct types.
package errs
