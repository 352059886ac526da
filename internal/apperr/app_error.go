package apperr

import "github.com/tuanvumaihuynh/inventory-etl/pkg/zerror"

const (
	ConfigurationErrorCode     = "CONFIGURATION_ERROR"
	AuthenticationErrorCode    = "AUTHENTICATION_FAILED"
	TransportErrorCode         = "TRANSPORT_ERROR"
	RemoteApplicationErrorCode = "REMOTE_APPLICATION_ERROR"
	WarehouseWriteErrorCode    = "WAREHOUSE_WRITE_FAILED"
)

var (
	ConfigurationErr     = zerror.NewInvalidConfig(ConfigurationErrorCode, "required configuration is missing or invalid")
	AuthenticationErr    = zerror.NewUnauthorized(AuthenticationErrorCode, "remote source rejected credentials")
	TransportErr         = zerror.NewUnavailable(TransportErrorCode, "remote source call failed")
	RemoteApplicationErr = zerror.NewUpstreamFailure(RemoteApplicationErrorCode, "remote source returned an error")
	WarehouseWriteErr    = zerror.NewWriteFailed(WarehouseWriteErrorCode, "warehouse write failed")
)
