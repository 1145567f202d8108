package bookingapi

import "fmt"

// NetworkError covers transport failures, timeouts and non-2xx responses on
// any of the three endpoints.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("bookingapi: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError means the service answered but signalled failure: a
// success:false booking response or a malformed payload.
type ServiceError struct {
	Op      string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("bookingapi: %s: %s", e.Op, e.Message)
}
