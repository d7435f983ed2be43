package translator

import "fmt"

// ServiceError is returned by every service when a translation attempt fails.
type ServiceError struct {
	Service string
	msg     string
}

func newServiceError(service, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Service: service, msg: fmt.Sprintf(format, args...)}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.msg)
}
