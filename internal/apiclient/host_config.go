package apiclient

type HostConfig struct {
	Host                 string `json:"host"`
	DisableTlsValidation bool   `json:"disable_tls_validation"`
}
