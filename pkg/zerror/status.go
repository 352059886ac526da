package zerror

// Status classifies a ZError independently of its code.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusInvalidConfig
	StatusUnauthorized
	StatusUnavailable
	StatusUpstreamFailure
	StatusWriteFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusInvalidConfig:
		return "INVALID_CONFIG"
	case StatusUnauthorized:
		return "UNAUTHORIZED"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusUpstreamFailure:
		return "UPSTREAM_FAILURE"
	case StatusWriteFailed:
		return "WRITE_FAILED"
	default:
		return "UNKNOWN"
	}
}
